package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowstudio"
	"github.com/aretw0/flowstudio/pkg/adapters/file"
	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/observability"
	"github.com/aretw0/flowstudio/pkg/ports/tests"
)

func newTestServer(t *testing.T, opts ...flowstudio.Option) (*Server, http.Handler) {
	t.Helper()
	s := NewServer(flowstudio.New(opts...))
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func contentFlow(text string) domain.UserFlowConfig {
	flow := domain.NewUserFlowConfig()
	flow.Entrypoints[0].Command().NextBlockID = domain.Ref("hello")
	flow.Blocks = append(flow.Blocks, domain.WrapBlock(&domain.ContentBlock{
		ID:       "hello",
		Contents: []domain.Content{{Text: &domain.ContentText{Text: domain.Text(text), Markup: "markdown"}}},
	}))
	flow.NodeDisplayCoords["hello"] = domain.Position{X: 0, Y: 250}
	return flow
}

func TestHealthAndInfo(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/info", nil)
	assert.Contains(t, rec.Body.String(), flowstudio.Version)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestValidate(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/validate", ValidateFlowRequest{Flow: contentFlow("")})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ValidateFlowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, []string{"Text #1: not filled in"}, resp.Report.Failed()[0].Result.Errors)

	rec = do(t, h, http.MethodPost, "/validate?lang=ru", ValidateFlowRequest{Flow: contentFlow("")})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, "Text #1: not filled in", resp.Report.Failed()[0].Result.Errors[0])

	rec = do(t, h, http.MethodPost, "/validate", ValidateFlowRequest{Flow: contentFlow("hi")})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
}

func TestValidate_Errors(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"flow":{"entrypoints":[],"blocks":[{"webhook":{}}],"node_display_coords":{}}}`
	req = httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Internal)
}

func TestValidateNode(t *testing.T) {
	_, h := newTestServer(t)

	block, err := json.Marshal(domain.WrapBlock(&domain.ContentBlock{
		ID:       "c",
		Contents: []domain.Content{{Text: &domain.ContentText{Text: domain.Text("")}}},
	}))
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/validate/node", ValidateNodeRequest{Kind: domain.KindBlock, Config: block})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":false,"errors":["Text #1: not filled in"]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/validate/node", ValidateNodeRequest{Kind: domain.KindBlock, Config: json.RawMessage(`{}`)})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/validate/node", ValidateNodeRequest{Kind: "edge", Config: block})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, bad := range []ValidateNodeRequest{
		{Kind: domain.KindBlock, Config: json.RawMessage(`"content"`)},
		{Kind: domain.KindBlock, Config: json.RawMessage(`{"content": {"block_id": "a"}, "menu": {"block_id": "b"}}`)},
		{Kind: domain.KindEntrypoint, Config: json.RawMessage(`[1]`)},
	} {
		rec = do(t, h, http.MethodPost, "/validate/node", bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, string(bad.Config))
	}
}

func TestClone(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/clone", CloneRequest{Flow: contentFlow("hi"), NodeIDs: []string{"hello"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Nodes []struct {
			ID   string          `json:"id"`
			Kind domain.NodeKind `json:"kind"`
		} `json:"nodes"`
		IDs map[string]string `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Nodes, 1)
	assert.Equal(t, out.IDs["hello"], out.Nodes[0].ID)
	assert.NotEqual(t, "hello", out.Nodes[0].ID)

	rec = do(t, h, http.MethodPost, "/clone", CloneRequest{Flow: contentFlow("hi"), NodeIDs: []string{"nope"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/clone", CloneRequest{Flow: contentFlow("hi")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPosition(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/layout/position", PositionRequest{Flow: contentFlow("hi")})
	require.Equal(t, http.StatusOK, rec.Code)
	var pos domain.Position
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pos))
	assert.NotEqual(t, domain.Position{X: 0, Y: 250}, pos)
}

func TestTemplates(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/templates", nil)
	assert.JSONEq(t, `["content","survey"]`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/templates/content/apply", domain.NewUserFlowConfig())
	require.Equal(t, http.StatusOK, rec.Code)
	var flow domain.UserFlowConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flow))
	assert.Len(t, flow.Blocks, 1)

	rec = do(t, h, http.MethodPost, "/templates/nope/apply", domain.NewUserFlowConfig())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/templates/content/apply", domain.UserFlowConfig{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestConfigs(t *testing.T) {
	metrics := observability.NewMetrics()
	_, h := newTestServer(t, flowstudio.WithMetrics(metrics))

	cfg := tests.SampleConfig("bot")
	req := httptest.NewRequest(http.MethodPut, "/configs/bot", bytes.NewReader(mustJSON(t, cfg)))
	req.Header.Set("X-Version-Message", "first")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/configs/bot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, string(mustJSON(t, cfg)), rec.Body.String())

	rec = do(t, h, http.MethodGet, "/configs", nil)
	assert.JSONEq(t, `["bot"]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/configs/bot/versions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"first"`)

	rec = do(t, h, http.MethodGet, "/configs/bot/versions/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/configs/bot/versions/9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/configs/bot/versions/x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	invalid := &domain.BotConfig{UserFlowConfig: contentFlow("")}
	rec = do(t, h, http.MethodPut, "/configs/bot", invalid)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "not filled in")
	rec = do(t, h, http.MethodPut, "/configs/bot?force=true", invalid)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/configs/bot", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/configs/bot", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/configs/{name}"`)
}

func TestPutConfig_ReportsPrunedConfig(t *testing.T) {
	_, h := newTestServer(t)

	flow := domain.NewUserFlowConfig()
	flow.Entrypoints[0].Command().NextBlockID = domain.Ref("menu")
	flow.Blocks = append(flow.Blocks, domain.WrapBlock(&domain.MenuBlock{
		ID: "menu",
		Menu: domain.Menu{
			Text:  domain.Text("Pick"),
			Items: []domain.MenuItem{{Label: domain.Text("Go"), NextBlockID: domain.Ref("ghost")}},
		},
	}))

	rec := do(t, h, http.MethodPut, "/configs/bot", &domain.BotConfig{UserFlowConfig: flow})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ValidateFlowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	failed := resp.Report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "menu", failed[0].ID)
	assert.Equal(t, []string{"Button #1 leads nowhere: add a submenu, a next block or a link"}, failed[0].Result.Errors)
}

func TestVersionsNotSupported(t *testing.T) {
	_, h := newTestServer(t, flowstudio.WithStore(file.New(t.TempDir())))
	rec := do(t, h, http.MethodGet, "/configs/bot/versions", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: "); ok {
			return data
		}
	}
}

func TestSubscribeEvents(t *testing.T) {
	dir := t.TempDir()
	s, h := newTestServer(t, flowstudio.WithStore(file.New(dir)))
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.WatchStore(ctx, file.New(dir)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?config=bot", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	events := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", readEvent(t, events))

	put, err := http.NewRequest(http.MethodPut, srv.URL+"/configs/bot", bytes.NewReader(mustJSON(t, tests.SampleConfig("bot"))))
	require.NoError(t, err)
	putResp, err := srv.Client().Do(put)
	require.NoError(t, err)
	putResp.Body.Close()
	require.Equal(t, http.StatusNoContent, putResp.StatusCode)

	// the save is reported by the API and by the store watcher, in any order
	seen := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for len(seen) < 2 {
		got := make(chan string, 1)
		go func() { got <- readEvent(t, events) }()
		select {
		case data := <-got:
			var ev ConfigEvent
			require.NoError(t, json.Unmarshal([]byte(data), &ev))
			assert.Equal(t, "bot", ev.Name)
			seen[ev.Op] = true
		case <-deadline:
			t.Fatalf("events seen: %v", seen)
		}
	}
	assert.True(t, seen["saved"])
	assert.True(t, seen["changed"])
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager(flowstudio.New().Logger())
	all, cancelAll := sm.Subscribe("")
	one, cancelOne := sm.Subscribe("a")
	defer cancelAll()

	sm.Broadcast("a", ConfigEvent{Name: "a", Op: "saved"})
	sm.Broadcast("b", ConfigEvent{Name: "b", Op: "saved"})

	assert.Contains(t, <-all, `"name":"a"`)
	assert.Contains(t, <-all, `"name":"b"`)
	assert.Contains(t, <-one, `"name":"a"`)
	assert.Empty(t, one)

	cancelOne()
	_, open := <-one
	assert.False(t, open)
}
