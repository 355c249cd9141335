// Package http provides the stub catalog HTTP server.
package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/artpar/catalogctl/adapters/auth"
	"github.com/artpar/catalogctl/adapters/memory"
	"github.com/artpar/catalogctl/adapters/metrics"
	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/domain/patch"
	"github.com/artpar/catalogctl/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxBodySize = 10 << 20

// StubConfig configures the stub catalog router.
type StubConfig struct {
	Store          *memory.Catalog
	Tokens         *auth.TokenService // nil disables bearer auth
	Accounts       *auth.Credentials
	Metrics        *metrics.Collector
	MetricsHandler http.Handler // served at /metrics when set
	Logger         zerolog.Logger
	Timeout        time.Duration
}

// StubHandler serves the catalog REST surface from an in-memory store.
type StubHandler struct {
	store    *memory.Catalog
	tokens   *auth.TokenService
	accounts *auth.Credentials
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

// NewStubRouter creates the stub catalog router.
func NewStubRouter(cfg StubConfig) chi.Router {
	h := &StubHandler{
		store:    cfg.Store,
		tokens:   cfg.Tokens,
		accounts: cfg.Accounts,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.With().Str("component", "stub").Logger(),
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users/login", h.Login)

		r.Group(func(r chi.Router) {
			if h.tokens != nil {
				r.Use(NewAuthMiddleware(h.tokens, cfg.Metrics))
			}

			r.Post("/services/ingestionPipelines/trigger/{id}", h.TriggerPipeline)
			r.Get("/services/ingestionPipelines/{id}", h.PipelineStatus)

			r.Post("/services/{endpoint}", h.CreateService)
			r.Get("/services/{endpoint}/name/{fqn}", h.GetService)
			r.Delete("/services/{endpoint}/name/{fqn}", h.DeleteService)

			r.Get("/search/query", h.Search)
			r.Get("/docStore/name/{fqn}", h.GetDocument)
			r.Get("/limits/config", h.Limits)
			r.Get("/system/settings/{type}", h.Setting)

			r.Post("/{kind}", h.CreateEntity)
			r.Get("/{kind}/name/{fqn}", h.GetEntity)
			r.Patch("/{kind}/name/{fqn}", h.PatchEntity)
		})
	})

	h.refreshGauge()
	return r
}

// -----------------------------------------------------------------------------
// Auth
// -----------------------------------------------------------------------------

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` // base64
}

// Login checks credentials and issues an access token.
func (h *StubHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid login request")
		return
	}
	password, err := base64.StdEncoding.DecodeString(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "password must be base64 encoded")
		return
	}
	if h.accounts == nil || h.tokens == nil {
		writeError(w, http.StatusNotImplemented, "login is disabled")
		return
	}

	acct, err := h.accounts.Verify(req.Email, string(password))
	if err != nil {
		h.logger.Info().Str("email", req.Email).Msg("login rejected")
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	token, expiresAt, err := h.tokens.Issue(acct)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken":    token,
		"tokenType":      "Bearer",
		"expiryDuration": expiresAt.UnixMilli(),
	})
}

// -----------------------------------------------------------------------------
// Services
// -----------------------------------------------------------------------------

// CreateService handles POST /api/v1/services/{endpoint}.
func (h *StubHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}
	body, ok := readDocument(w, r)
	if !ok {
		return
	}
	doc, err := h.store.CreateService(category, body)
	h.respond(w, http.StatusCreated, doc, err)
}

// GetService handles GET /api/v1/services/{endpoint}/name/{fqn}.
func (h *StubHandler) GetService(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}
	doc, err := h.store.GetService(category, fqnParam(r))
	h.respond(w, http.StatusOK, doc, err)
}

// DeleteService handles DELETE /api/v1/services/{endpoint}/name/{fqn}.
func (h *StubHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	opts := ports.DeleteOptions{
		Recursive:  boolParam(q, "recursive"),
		HardDelete: boolParam(q, "hardDelete"),
	}
	doc, err := h.store.DeleteService(category, fqnParam(r), opts)
	h.respond(w, http.StatusOK, doc, err)
}

// -----------------------------------------------------------------------------
// Entities
// -----------------------------------------------------------------------------

// CreateEntity handles POST /api/v1/{kind}.
func (h *StubHandler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	body, ok := readDocument(w, r)
	if !ok {
		return
	}
	doc, err := h.store.CreateEntity(kind, body)
	h.respond(w, http.StatusCreated, doc, err)
}

// GetEntity handles GET /api/v1/{kind}/name/{fqn}.
func (h *StubHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	doc, err := h.store.GetEntity(kind, fqnParam(r))
	h.respond(w, http.StatusOK, doc, err)
}

// PatchEntity handles PATCH /api/v1/{kind}/name/{fqn}.
func (h *StubHandler) PatchEntity(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != patch.ContentType {
		writeError(w, http.StatusUnsupportedMediaType, "patch requires "+patch.ContentType)
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}
	doc, err := h.store.PatchEntity(kind, fqnParam(r), raw)
	h.respond(w, http.StatusOK, doc, err)
}

// Search handles GET /api/v1/search/query.
func (h *StubHandler) Search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Search(r.URL.Query().Get("q")))
}

// -----------------------------------------------------------------------------
// Documents, settings and pipelines
// -----------------------------------------------------------------------------

// GetDocument handles GET /api/v1/docStore/name/{fqn}.
func (h *StubHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.GetDocument(fqnParam(r))
	h.respond(w, http.StatusOK, doc, err)
}

// Limits handles GET /api/v1/limits/config.
func (h *StubHandler) Limits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Limits())
}

// Setting handles GET /api/v1/system/settings/{type}.
func (h *StubHandler) Setting(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Setting(chi.URLParam(r, "type"))
	h.respond(w, http.StatusOK, doc, err)
}

// TriggerPipeline handles POST /api/v1/services/ingestionPipelines/trigger/{id}.
func (h *StubHandler) TriggerPipeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.TriggerPipeline(id); err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// PipelineStatus handles GET /api/v1/services/ingestionPipelines/{id}.
func (h *StubHandler) PipelineStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := h.store.PipelineStatus(id)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "pipelineStatuses": status})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// respond writes doc with status, or maps a store error to its status.
func (h *StubHandler) respond(w http.ResponseWriter, status int, doc catalog.Document, err error) {
	if err != nil {
		code := errorStatus(err)
		if code >= 500 {
			h.logger.Error().Err(err).Msg("stub request failed")
		}
		writeError(w, code, err.Error())
		return
	}
	if status == http.StatusCreated || status == http.StatusOK {
		h.refreshGauge()
	}
	writeJSON(w, status, doc)
}

func (h *StubHandler) refreshGauge() {
	if h.metrics == nil || h.store == nil {
		return
	}
	for typ, n := range h.store.Counts() {
		h.metrics.StubEntities.WithLabelValues(typ).Set(float64(n))
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, memory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, memory.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, memory.ErrInvalid), errors.Is(err, memory.ErrHasChildren):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func categoryParam(w http.ResponseWriter, r *http.Request) (catalog.Category, bool) {
	category, ok := catalog.CategoryForEndpoint(chi.URLParam(r, "endpoint"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown service collection")
	}
	return category, ok
}

func kindParam(w http.ResponseWriter, r *http.Request) (catalog.Kind, bool) {
	kind := catalog.Kind(chi.URLParam(r, "kind"))
	if !kind.IsKnown() {
		writeError(w, http.StatusNotFound, "unknown entity collection")
		return "", false
	}
	return kind, true
}

// fqnParam returns the decoded fqn. Chi matches on the escaped path when
// the request has one, so params may still be percent-encoded.
func fqnParam(r *http.Request) string {
	raw := chi.URLParam(r, "fqn")
	if fqn, err := url.PathUnescape(raw); err == nil {
		return fqn
	}
	return raw
}

func boolParam(q url.Values, key string) bool {
	v, _ := strconv.ParseBool(q.Get(key))
	return v
}

func readDocument(w http.ResponseWriter, r *http.Request) (catalog.Document, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return nil, false
	}
	doc, err := catalog.ParseDocument(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return doc, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"code": status, "message": message})
}
