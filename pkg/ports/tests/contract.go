// Package tests holds reusable contract suites for the ports adapters.
package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/ports"
)

// SampleConfig returns a small bot config carrying an unknown key at every
// level, to check that stores keep documents intact.
func SampleConfig(displayName string) *domain.BotConfig {
	flow := domain.NewUserFlowConfig()
	flow.Entrypoints[0].Command().NextBlockID = domain.Ref("content-1")
	flow.Blocks = append(flow.Blocks, domain.WrapBlock(&domain.ContentBlock{
		ID: "content-1",
		Contents: []domain.Content{{
			Text:        &domain.ContentText{Text: domain.Text("Hello"), Markup: "markdown"},
			Attachments: []domain.Attachment{},
		}},
		Extra: domain.Extra{"x_block": json.RawMessage(`{"a":1}`)},
	}))
	flow.NodeDisplayCoords["content-1"] = domain.Position{X: 0, Y: 250}
	flow.Extra = domain.Extra{"x_flow": json.RawMessage(`[1,2]`)}
	return &domain.BotConfig{
		DisplayName:     displayName,
		TokenSecretName: "token-" + displayName,
		UserFlowConfig:  flow,
		Extra:           domain.Extra{"x_bot": json.RawMessage(`"kept"`)},
	}
}

func assertSameConfig(t *testing.T, want, got *domain.BotConfig) {
	t.Helper()
	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))
}

// RunConfigStoreContract runs a suite of tests to verify that a ports.ConfigStore
// implementation adheres to the defined interface contract.
func RunConfigStoreContract(t *testing.T, store ports.ConfigStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		cfg := SampleConfig("Contract bot")
		require.NoError(t, store.Save(ctx, name, cfg), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assertSameConfig(t, cfg, loaded)

		// the stored document does not alias the caller's value
		cfg.DisplayName = "changed"
		loaded, err = store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "Contract bot", loaded.DisplayName)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, SampleConfig("first")))
		require.NoError(t, store.Save(ctx, name, SampleConfig("second")))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "second", loaded.DisplayName)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+name)
		assert.ErrorIs(t, err, ports.ErrConfigNotFound)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		err := store.Save(ctx, "../escape", SampleConfig("x"))
		assert.ErrorIs(t, err, ports.ErrInvalidName)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, SampleConfig("x")))
		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, ports.ErrConfigNotFound, "Load after Delete should return ports.ErrConfigNotFound")
		assert.NoError(t, store.Delete(ctx, name), "deleting twice is fine")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := name+"-b", name+"-a"
		require.NoError(t, store.Save(ctx, id1, SampleConfig("b")))
		require.NoError(t, store.Save(ctx, id2, SampleConfig("a")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
		assert.IsNonDecreasing(t, names)
	})

	t.Run("Concurrent Save", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Save(ctx, fmt.Sprintf("%s-c%d", name, i), SampleConfig("c")))
			}()
		}
		wg.Wait()

		names, err := store.List(ctx)
		require.NoError(t, err)
		for i := range 8 {
			id := fmt.Sprintf("%s-c%d", name, i)
			assert.Contains(t, names, id)
			_ = store.Delete(ctx, id)
		}
	})
}

// RunVersionedStoreContract runs RunConfigStoreContract plus the checks
// specific to revision history.
func RunVersionedStoreContract(t *testing.T, store ports.VersionedStore) {
	RunConfigStoreContract(t, store)

	ctx := context.Background()
	name := "versioned-" + time.Now().Format("20060102150405")

	t.Run("Versions", func(t *testing.T) {
		_, err := store.Versions(ctx, name)
		assert.ErrorIs(t, err, ports.ErrConfigNotFound)

		n1, err := store.SaveVersion(ctx, name, SampleConfig("v1"), "initial")
		require.NoError(t, err)
		n2, err := store.SaveVersion(ctx, name, SampleConfig("v2"), "rename")
		require.NoError(t, err)
		assert.Equal(t, 1, n1)
		assert.Equal(t, 2, n2)

		versions, err := store.Versions(ctx, name)
		require.NoError(t, err)
		require.Len(t, versions, 2)
		assert.Equal(t, "initial", versions[0].Message)
		assert.Equal(t, 2, versions[1].Number)

		latest, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "v2", latest.DisplayName)

		first, err := store.LoadVersion(ctx, name, 1)
		require.NoError(t, err)
		assertSameConfig(t, SampleConfig("v1"), first)

		_, err = store.LoadVersion(ctx, name, 3)
		assert.ErrorIs(t, err, ports.ErrVersionNotFound)
	})

	t.Run("Save adds a version", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, SampleConfig("v3")))
		versions, err := store.Versions(ctx, name)
		require.NoError(t, err)
		require.Len(t, versions, 3)
		assert.Empty(t, versions[2].Message)
	})

	t.Run("Delete drops history", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, name))
		_, err := store.Versions(ctx, name)
		assert.ErrorIs(t, err, ports.ErrConfigNotFound)
		_, err = store.LoadVersion(ctx, name, 1)
		assert.ErrorIs(t, err, ports.ErrVersionNotFound)
	})
}
