// Package http exposes a flowstudio.Studio to the browser editor over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/flowstudio"
	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/ports"
	"github.com/aretw0/flowstudio/pkg/template"
	"github.com/aretw0/flowstudio/pkg/validation"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 8 << 20

// Server serves the editor API.
type Server struct {
	Studio  *flowstudio.Studio
	Streams *StreamManager
	Logger  *slog.Logger
}

// NewServer creates a server for studio.
func NewServer(studio *flowstudio.Studio) *Server {
	return &Server{
		Studio:  studio,
		Streams: NewStreamManager(studio.Logger()),
		Logger:  studio.Logger(),
	}
}

// NewHandler creates a new HTTP handler for the studio.
func NewHandler(studio *flowstudio.Studio) http.Handler {
	return NewServer(studio).Handler()
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if m := s.Studio.Metrics(); m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Post("/validate", s.ValidateFlow)
	r.Post("/validate/node", s.ValidateNode)
	r.Post("/clone", s.Clone)
	r.Post("/layout/position", s.Position)

	r.Get("/templates", s.ListTemplates)
	r.Post("/templates/{name}/apply", s.ApplyTemplate)

	r.Route("/configs", func(r chi.Router) {
		r.Get("/", s.ListConfigs)
		r.Get("/{name}", s.GetConfig)
		r.Put("/{name}", s.PutConfig)
		r.Delete("/{name}", s.DeleteConfig)
		r.Get("/{name}/versions", s.ListVersions)
		r.Get("/{name}/versions/{number}", s.GetVersion)
	})

	r.Get("/events", s.SubscribeEvents)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Version-Message")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if m := s.Studio.Metrics(); m != nil && route != "/metrics" {
			m.ObserveRequest(r.Method, route, status, time.Since(start))
		}
		s.Logger.Debug("request served",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// -- Health --

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "flowstudio-http",
		"version": strings.TrimSpace(flowstudio.Version),
	})
}

// -- Editor core --

// ValidateFlow handles the POST /validate request.
func (s *Server) ValidateFlow(w http.ResponseWriter, r *http.Request) {
	var body ValidateFlowRequest
	if !s.decode(w, r, &body) {
		return
	}
	report := s.Studio.ValidateFlow(&body.Flow, uiLanguage(r, body.UILanguage))
	if len(report.Internal) > 0 {
		s.internalError(w, "ValidateFlow", errors.Join(asErrors(report.Internal)...))
		return
	}
	writeJSON(w, http.StatusOK, ValidateFlowResponse{OK: report.OK(), Report: report})
}

// ValidateNode handles the POST /validate/node request.
func (s *Server) ValidateNode(w http.ResponseWriter, r *http.Request) {
	var body ValidateNodeRequest
	if !s.decode(w, r, &body) {
		return
	}
	lang := uiLanguage(r, body.UILanguage)

	var (
		res validation.Result
		err error
	)
	switch body.Kind {
	case domain.KindEntrypoint:
		var ep domain.EntryPointConfig
		if err := json.Unmarshal(body.Config, &ep); err != nil {
			s.badRequest(w, "ValidateNode", fmt.Errorf("invalid entrypoint: %w", err))
			return
		}
		res, err = s.Studio.ValidateEntrypoint(ep, body.LanguageConfig, lang)
	case domain.KindBlock:
		var b domain.BlockConfig
		if err := json.Unmarshal(body.Config, &b); err != nil {
			s.badRequest(w, "ValidateNode", fmt.Errorf("invalid block: %w", err))
			return
		}
		res, err = s.Studio.ValidateBlock(b, body.LanguageConfig, lang)
	default:
		s.badRequest(w, "ValidateNode", fmt.Errorf("unknown node kind %q", body.Kind))
		return
	}
	if err != nil {
		s.internalError(w, "ValidateNode", err)
		return
	}
	writeJSON(w, http.StatusOK, ValidateNodeResponse{OK: res.OK(), Errors: res.Errors})
}

// Clone handles the POST /clone request.
func (s *Server) Clone(w http.ResponseWriter, r *http.Request) {
	var body CloneRequest
	if !s.decode(w, r, &body) {
		return
	}
	if len(body.NodeIDs) == 0 {
		s.badRequest(w, "Clone", errors.New("node_ids is empty"))
		return
	}
	out, err := s.Studio.Clone(&body.Flow, body.NodeIDs)
	if err != nil {
		if errors.Is(err, domain.ErrNodeNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.internalError(w, "Clone", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Position handles the POST /layout/position request.
func (s *Server) Position(w http.ResponseWriter, r *http.Request) {
	var body PositionRequest
	if !s.decode(w, r, &body) {
		return
	}
	writeJSON(w, http.StatusOK, s.Studio.Place(&body.Flow))
}

// ListTemplates handles the GET /templates request.
func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Studio.Templates().Names())
}

// ApplyTemplate handles the POST /templates/{name}/apply request.
func (s *Server) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var flow domain.UserFlowConfig
	if !s.decode(w, r, &flow) {
		return
	}
	out, err := s.Studio.ApplyTemplate(flow, chi.URLParam(r, "name"))
	switch {
	case errors.Is(err, template.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, template.ErrStartCommandNotFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		s.internalError(w, "ApplyTemplate", err)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

// -- Configs --

// ListConfigs handles the GET /configs request.
func (s *Server) ListConfigs(w http.ResponseWriter, r *http.Request) {
	names, err := s.Studio.List(r.Context())
	if err != nil {
		s.internalError(w, "ListConfigs", err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// GetConfig handles the GET /configs/{name} request.
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.Studio.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.storeError(w, "GetConfig", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// PutConfig handles the PUT /configs/{name} request. The config must pass
// validation unless ?force=true is given.
func (s *Server) PutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.BotConfig
	if !s.decode(w, r, &cfg) {
		return
	}
	name := chi.URLParam(r, "name")
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	opts := flowstudio.SaveOptions{
		Message:        r.Header.Get("X-Version-Message"),
		SkipValidation: force,
	}

	err := s.Studio.Save(r.Context(), name, &cfg, opts)
	if errors.Is(err, flowstudio.ErrInvalidConfig) {
		// report what Save saw: the config after pruning
		flow, perr := domain.Prune(cfg.UserFlowConfig)
		if perr != nil {
			s.internalError(w, "PutConfig", perr)
			return
		}
		report := s.Studio.ValidateFlow(&flow, uiLanguage(r, ""))
		writeJSON(w, http.StatusUnprocessableEntity, ValidateFlowResponse{OK: false, Report: report})
		return
	}
	if err != nil {
		s.storeError(w, "PutConfig", err)
		return
	}
	s.Streams.Broadcast(name, ConfigEvent{Name: name, Op: "saved"})
	w.WriteHeader(http.StatusNoContent)
}

// DeleteConfig handles the DELETE /configs/{name} request.
func (s *Server) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.Studio.Delete(r.Context(), name); err != nil {
		s.storeError(w, "DeleteConfig", err)
		return
	}
	s.Streams.Broadcast(name, ConfigEvent{Name: name, Op: "deleted"})
	w.WriteHeader(http.StatusNoContent)
}

// ListVersions handles the GET /configs/{name}/versions request.
func (s *Server) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.Studio.Versions(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.storeError(w, "ListVersions", err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// GetVersion handles the GET /configs/{name}/versions/{number} request.
func (s *Server) GetVersion(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		s.badRequest(w, "GetVersion", fmt.Errorf("invalid version number: %w", err))
		return
	}
	cfg, err := s.Studio.LoadVersion(r.Context(), chi.URLParam(r, "name"), number)
	if err != nil {
		s.storeError(w, "GetVersion", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// WatchStore forwards the changes reported by a watchable store to the
// event subscribers until ctx is done.
func (s *Server) WatchStore(ctx context.Context, store ports.Watchable) error {
	changes, err := store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch store: %w", err)
	}
	go func() {
		for name := range changes {
			s.Streams.Broadcast(name, ConfigEvent{Name: name, Op: "changed"})
		}
	}()
	return nil
}

// -- Helpers --

func uiLanguage(r *http.Request, lang string) string {
	if lang != "" {
		return lang
	}
	if q := r.URL.Query().Get("lang"); q != "" {
		return q
	}
	// first tag of Accept-Language, without region and weight
	accept := r.Header.Get("Accept-Language")
	tag, _, _ := strings.Cut(accept, ",")
	tag, _, _ = strings.Cut(tag, ";")
	tag, _, _ = strings.Cut(strings.TrimSpace(tag), "-")
	return strings.ToLower(tag)
}

func asErrors[E error](errs []E) []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(v); err != nil {
		s.badRequest(w, "decode", fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) badRequest(w http.ResponseWriter, op string, err error) {
	s.Logger.Warn(op+": bad request", "err", err)
	writeError(w, http.StatusBadRequest, err.Error())
}

// internalError reports structural problems: input the editor should never
// have produced, or a failing backend.
func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrUnknownVariant) || errors.Is(err, domain.ErrMultipleVariants) {
		s.Logger.Warn(op+": malformed config", "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Internal: true})
		return
	}
	s.Logger.Error(op+" failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Internal: true})
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ports.ErrConfigNotFound), errors.Is(err, ports.ErrVersionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ports.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, flowstudio.ErrNotVersioned):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		s.internalError(w, op, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
