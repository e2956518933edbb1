// Package models - API response types and error handling.
// All outgoing response structures share a consistent JSON shape:
// optional fields use omitempty, errors carry machine-readable codes
// alongside human-readable messages, and timestamps are RFC3339.
package models

import (
	"time"
)

// EmbedResponse is the JSON representation of a stored embed.
type EmbedResponse struct {
	Code        string     `json:"code"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Colour      *int       `json:"colour,omitempty"`
	Timestamp   int64      `json:"timestamp"`
	AuthorName  string     `json:"author_name,omitempty"`
	MediaURL    string     `json:"media_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// FromEmbed populates the response from a stored embed. The owner hash
// never leaves the server.
func (r *EmbedResponse) FromEmbed(e *Embed, baseURL string) {
	r.Code = e.Code
	r.URL = baseURL + "/embed/" + e.Code
	r.Title = e.Title
	r.Description = e.Description
	r.Colour = e.Colour
	r.Timestamp = e.Timestamp.Unix()
	r.AuthorName = e.AuthorName
	r.MediaURL = e.MediaURL
	r.CreatedAt = e.CreatedAt
	if !e.UpdatedAt.IsZero() && !e.UpdatedAt.Equal(e.CreatedAt) {
		r.UpdatedAt = &e.UpdatedAt
	}
}

type CreateEmbedResponse struct {
	Code      string    `json:"code"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type DeleteEmbedResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse provides structured error information.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"request_id,omitempty"`
}

// RateLimitedResponse is the fixed body of every 429. The wording is
// part of the public contract and must not change.
type RateLimitedResponse struct {
	Detail string `json:"detail"`
}

const RateLimitedDetail = "You are being rate limited."

type HealthCheckResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

type ComponentHealth struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Health status constants.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// Machine-readable error codes, upper-case with underscores, mapped to
// the HTTP status they ride on.
const (
	ErrorCodeNotFound           = "NOT_FOUND"           // 404
	ErrorCodeBadRequest         = "BAD_REQUEST"         // 400
	ErrorCodeValidation         = "VALIDATION_ERROR"    // 422
	ErrorCodeForbidden          = "FORBIDDEN"           // 403
	ErrorCodeConflict           = "CONFLICT"            // 409
	ErrorCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrorCodeNotAcceptable      = "NOT_ACCEPTABLE"      // 406
)

func NewErrorResponse(message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

func NewRateLimitedResponse() *RateLimitedResponse {
	return &RateLimitedResponse{Detail: RateLimitedDetail}
}

func NewHealthCheckResponse(status string) *HealthCheckResponse {
	return &HealthCheckResponse{
		Status:     status,
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}
}

func (h *HealthCheckResponse) AddComponent(name, status, message string) {
	h.Components[name] = ComponentHealth{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}
}
