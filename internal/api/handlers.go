package api

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	embedsvc "embedserver/internal/embed"
	"embedserver/internal/models"
	"embedserver/internal/ratelimit"
	"embedserver/internal/storage"
	"embedserver/internal/version"

	"github.com/gorilla/mux"
)

// Bucket names charged by the gated handlers. SetupRoutes validates all of
// them against the limiter's registry before serving.
const (
	bucketGenerate = "generate"
	bucketCreate   = "create"
	bucketUpdate   = "update"
	bucketDelete   = "delete"
)

//go:embed templates/embed.html
var templateFS embed.FS

var embedTemplate = template.Must(template.ParseFS(templateFS, "templates/embed.html"))

// Handlers contains HTTP handlers for the embed API
type Handlers struct {
	embedService embedsvc.ServiceInterface
	storage      storage.Storage
	limiter      *ratelimit.Limiter
	baseURL      string
}

// NewHandlers creates a new handlers instance
func NewHandlers(embedService embedsvc.ServiceInterface, store storage.Storage, limiter *ratelimit.Limiter, baseURL string) *Handlers {
	return &Handlers{
		embedService: embedService,
		storage:      store,
		limiter:      limiter,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
	}
}

// allow charges the request against the named bucket and writes headers.
// It returns false when the response has already been written and the
// handler must not continue.
func (h *Handlers) allow(w http.ResponseWriter, r *http.Request, bucket string) bool {
	res, err := h.limiter.Check(r.Context(), ratelimit.ClientIP(r), bucket)
	if err != nil {
		return ratelimit.HandleStoreError(w, r, h.limiter, err)
	}
	res.Headers.Apply(w.Header())
	if !res.Allowed {
		ratelimit.Reject(w, res.Headers)
		return false
	}
	return true
}

// Root redirects visitors to the canonical embed creation page.
// GET /
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.resolveBaseURL(r)+"/embed/quick", http.StatusPermanentRedirect)
}

// QuickEmbed renders an ephemeral embed straight from query parameters
// without storing anything.
// GET /embed/quick
func (h *Handlers) QuickEmbed(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, bucketGenerate) {
		return
	}

	payload, err := payloadFromQuery(r)
	if err != nil {
		h.writeErrorResponse(w, http.StatusUnprocessableEntity, models.ErrorCodeValidation, err.Error())
		return
	}
	if payload.Title == nil {
		h.writeErrorResponse(w, http.StatusUnprocessableEntity, models.ErrorCodeValidation, "title is required")
		return
	}

	e := &models.Embed{Title: *payload.Title, Timestamp: time.Now().UTC()}
	if payload.Description != nil {
		e.Description = *payload.Description
	}
	if payload.Colour != nil {
		e.Colour = payload.Colour
	}
	if payload.AuthorName != nil {
		e.AuthorName = *payload.AuthorName
	}
	if payload.MediaURL != nil {
		e.MediaURL = *payload.MediaURL
	}

	h.renderEmbed(w, r, e)
}

// GetEmbed serves a stored embed as HTML or JSON depending on the
// Accept header.
// GET /embed/{code}
func (h *Handlers) GetEmbed(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, bucketGenerate) {
		return
	}

	code := mux.Vars(r)["code"]
	e, err := h.embedService.Get(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.renderEmbed(w, r, e)
}

// CreateEmbed stores a new embed and returns its code and URL.
// POST /embed/create
func (h *Handlers) CreateEmbed(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, bucketCreate) {
		return
	}

	var payload models.EmbedPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON body")
		return
	}

	e, err := h.embedService.Create(r.Context(), ratelimit.ClientIP(r), &payload)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, models.CreateEmbedResponse{
		Code:      e.Code,
		URL:       h.resolveBaseURL(r) + "/embed/" + e.Code,
		CreatedAt: e.CreatedAt,
	})
}

// UpdateEmbed applies a partial update to an embed owned by the caller.
// PUT /embed/{code}
func (h *Handlers) UpdateEmbed(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, bucketUpdate) {
		return
	}

	var payload models.EmbedPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON body")
		return
	}

	code := mux.Vars(r)["code"]
	e, err := h.embedService.Update(r.Context(), ratelimit.ClientIP(r), code, &payload)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var resp models.EmbedResponse
	resp.FromEmbed(e, h.resolveBaseURL(r))
	h.writeJSONResponse(w, http.StatusOK, resp)
}

// DeleteEmbed removes an embed owned by the caller.
// DELETE /embed/{code}
func (h *Handlers) DeleteEmbed(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, bucketDelete) {
		return
	}

	code := mux.Vars(r)["code"]
	if err := h.embedService.Delete(r.Context(), ratelimit.ClientIP(r), code); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, models.DeleteEmbedResponse{
		Code:    code,
		Message: "embed deleted",
	})
}

// HealthCheck reports the health of the service and its dependencies.
// GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := models.NewHealthCheckResponse(models.StatusHealthy)
	response.Version = version.GetInfo().Version

	if err := h.storage.Ping(r.Context()); err != nil {
		response.Status = models.StatusDegraded
		response.AddComponent("storage", models.StatusUnhealthy, err.Error())
	} else {
		response.AddComponent("storage", models.StatusHealthy, "storage is operational")
	}

	if err := h.limiter.Ping(r.Context()); err != nil {
		response.Status = models.StatusDegraded
		response.AddComponent("ratelimit", models.StatusUnhealthy, err.Error())
	} else {
		response.AddComponent("ratelimit", models.StatusHealthy, "counter store is operational")
	}

	status := http.StatusOK
	if response.Status != models.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSONResponse(w, status, response)
}

// renderEmbed negotiates HTML vs JSON output via the Accept header.
func (h *Handlers) renderEmbed(w http.ResponseWriter, r *http.Request, e *models.Embed) {
	if prefersJSON(r.Header.Get("Accept")) {
		var resp models.EmbedResponse
		resp.FromEmbed(e, h.resolveBaseURL(r))
		h.writeJSONResponse(w, http.StatusOK, resp)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := embedTemplate.Execute(w, e); err != nil {
		slog.Error("failed to render embed template", "error", err, "code", e.Code)
	}
}

// prefersJSON reports whether the Accept header ranks application/json
// above text/html. Browsers send text/html first; API clients usually
// ask for application/json explicitly.
func prefersJSON(accept string) bool {
	if accept == "" {
		return false
	}

	bestJSON, bestHTML := -1.0, -1.0
	for _, part := range strings.Split(accept, ",") {
		mediaType, q := parseAcceptPart(part)
		switch mediaType {
		case "application/json":
			if q > bestJSON {
				bestJSON = q
			}
		case "text/html", "application/xhtml+xml":
			if q > bestHTML {
				bestHTML = q
			}
		case "*/*":
			if bestHTML < 0 {
				bestHTML = q - 0.0001
			}
		}
	}

	return bestJSON > bestHTML
}

func parseAcceptPart(part string) (string, float64) {
	fields := strings.Split(strings.TrimSpace(part), ";")
	mediaType := strings.ToLower(strings.TrimSpace(fields[0]))
	q := 1.0
	for _, f := range fields[1:] {
		f = strings.TrimSpace(f)
		if strings.HasPrefix(f, "q=") {
			if parsed, err := strconv.ParseFloat(f[2:], 64); err == nil {
				q = parsed
			}
		}
	}
	return mediaType, q
}

// payloadFromQuery builds an embed payload from URL query parameters.
// The colour accepts decimal or 0x-prefixed hexadecimal.
func payloadFromQuery(r *http.Request) (*models.EmbedPayload, error) {
	q := r.URL.Query()
	payload := &models.EmbedPayload{}

	if title := q.Get("title"); title != "" {
		payload.Title = &title
	}
	if description := q.Get("description"); description != "" {
		payload.Description = &description
	}
	if authorName := q.Get("author_name"); authorName != "" {
		payload.AuthorName = &authorName
	}
	if mediaURL := q.Get("media_url"); mediaURL != "" {
		payload.MediaURL = &mediaURL
	}
	if colour := q.Get("colour"); colour != "" {
		trimmed := strings.TrimPrefix(colour, "#")
		parsed, err := strconv.ParseInt(trimmed, 0, 64)
		if err != nil {
			// Bare hex like "ff0000" fails base-0 parsing; retry as hex.
			parsed, err = strconv.ParseInt(trimmed, 16, 64)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid colour: %s", colour)
		}
		c := int(parsed)
		payload.Colour = &c
	}

	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

// resolveBaseURL prefers the configured base URL and falls back to the
// request host.
func (h *Handlers) resolveBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing more we can send.
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeErrorResponse writes an error response
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	h.writeJSONResponse(w, statusCode, models.NewErrorResponse(message, errorCode))
}

// writeServiceError maps service errors onto HTTP responses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *embedsvc.ServiceError
	if errors.As(err, &svcErr) {
		h.writeErrorResponse(w, svcErr.StatusCode, svcErr.Code, svcErr.Message)
		return
	}
	slog.Error("unexpected service error", "error", err)
	h.writeErrorResponse(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "Internal server error")
}
