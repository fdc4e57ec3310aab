package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
	"github.com/rajasatyajit/DisasterFeed/internal/pipeline"
)

// MaxLimit is the largest accepted limit parameter
const MaxLimit = 1000

// Service produces the response envelopes served by the API
type Service interface {
	OfficialUpdates(ctx context.Context, q models.UpdatesQuery) (pipeline.Result, error)
	SearchUpdates(ctx context.Context, q models.SearchQuery) (pipeline.Result, error)
	SocialMedia(ctx context.Context, q models.SocialQuery) (pipeline.Result, error)
	Sources(ctx context.Context) (models.SourcesEnvelope, error)
	Health(ctx context.Context) map[string]error
}

// Defaults are the limits used when a request omits the limit parameter
type Defaults struct {
	UpdatesLimit int
	SearchLimit  int
	SocialLimit  int
}

// Handler handles HTTP requests for the API
type Handler struct {
	service   Service
	defaults  Defaults
	version   string
	buildTime string
	gitCommit string
	startTime time.Time
}

// NewHandler creates a new API handler
func NewHandler(service Service, defaults Defaults, version, buildTime, gitCommit string) *Handler {
	if defaults.UpdatesLimit < 1 {
		defaults.UpdatesLimit = 20
	}
	if defaults.SearchLimit < 1 {
		defaults.SearchLimit = 20
	}
	if defaults.SocialLimit < 1 {
		defaults.SocialLimit = 50
	}
	return &Handler{
		service:   service,
		defaults:  defaults,
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		// Health check endpoints
		r.Get("/health", h.healthHandler)
		r.Get("/health/ready", h.readinessHandler)
		r.Get("/health/live", h.livenessHandler)

		r.Route("/official-updates", func(r chi.Router) {
			r.Get("/", h.officialUpdatesHandler)
			r.Get("/search", h.searchHandler)
			r.Get("/sources", h.sourcesHandler)
		})
		r.Get("/social-media", h.socialMediaHandler)

		r.Get("/version", h.versionHandler)
	})

	// Root health check
	r.Get("/health", h.healthHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler reports 503 while the source registry is unreachable.
// A failing cache only marks the service degraded.
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]string{}

	for name, err := range h.service.Health(ctx) {
		if err == nil {
			checks[name] = "ok"
			continue
		}
		checks[name] = "error: " + err.Error()
		if name == "registry" {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		} else if statusCode == http.StatusOK {
			status = "degraded"
		}
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// officialUpdatesHandler handles GET /v1/official-updates
func (h *Handler) officialUpdatesHandler(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseUpdatesQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.OfficialUpdates(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeResult(w, res)
}

// searchHandler handles GET /v1/official-updates/search
func (h *Handler) searchHandler(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseSearchQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.SearchUpdates(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeResult(w, res)
}

// sourcesHandler handles GET /v1/official-updates/sources
func (h *Handler) sourcesHandler(w http.ResponseWriter, r *http.Request) {
	env, err := h.service.Sources(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	h.writeJSONResponse(w, http.StatusOK, env)
}

// socialMediaHandler handles GET /v1/social-media
func (h *Handler) socialMediaHandler(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseSocialQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.SocialMedia(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeResult(w, res)
}

// parseUpdatesQuery parses query parameters into UpdatesQuery
func (h *Handler) parseUpdatesQuery(r *http.Request) (models.UpdatesQuery, error) {
	params := r.URL.Query()
	q := models.UpdatesQuery{
		Sources:  models.ParseSources(params.Get("sources")),
		Category: strings.ToLower(strings.TrimSpace(params.Get("category"))),
		Keywords: strings.TrimSpace(params.Get("keywords")),
	}

	if raw := strings.TrimSpace(params.Get("severity")); raw != "" {
		severity, err := models.ParseSeverity(raw)
		if err != nil {
			return q, apperrors.Invalid("severity", "must be one of high, medium, low (got %q)", raw)
		}
		q.Severity = severity
	}

	limit, err := parseLimit(params.Get("limit"), h.defaults.UpdatesLimit)
	if err != nil {
		return q, err
	}
	q.Limit = limit

	return q, nil
}

// parseSearchQuery parses query parameters into SearchQuery
func (h *Handler) parseSearchQuery(r *http.Request) (models.SearchQuery, error) {
	params := r.URL.Query()
	q := models.SearchQuery{
		Query:   strings.TrimSpace(params.Get("q")),
		Sources: models.ParseSources(params.Get("sources")),
	}
	if q.Query == "" {
		return q, apperrors.Missing("q")
	}

	limit, err := parseLimit(params.Get("limit"), h.defaults.SearchLimit)
	if err != nil {
		return q, err
	}
	q.Limit = limit

	return q, nil
}

// parseSocialQuery parses query parameters into SocialQuery
func (h *Handler) parseSocialQuery(r *http.Request) (models.SocialQuery, error) {
	params := r.URL.Query()
	q := models.SocialQuery{
		Keywords:     strings.TrimSpace(params.Get("keywords")),
		DisasterType: strings.ToLower(strings.TrimSpace(params.Get("disaster_type"))),
	}

	limit, err := parseLimit(params.Get("limit"), h.defaults.SocialLimit)
	if err != nil {
		return q, err
	}
	q.Limit = limit

	return q, nil
}

func parseLimit(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > MaxLimit {
		return 0, apperrors.Invalid("limit", "must be an integer between 1 and %d (got %q)", MaxLimit, raw)
	}
	return limit, nil
}

// writeResult writes a pipeline result verbatim
func (h *Handler) writeResult(w http.ResponseWriter, res pipeline.Result) {
	cacheStatus := "MISS"
	if res.Cached {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Body)
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status code and writes the error body.
// Only client errors expose their message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.IsClientError(err) {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	logger.WithContext(r.Context()).Error("Request failed", "path", r.URL.Path, "error", err)
	h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := models.ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetReqID(r.Context()),
	}

	h.writeJSONResponse(w, statusCode, response)
}
