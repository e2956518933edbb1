package ratelimit

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// rateLimitedBody is the 429 response body. The wording is part of the
// API contract.
type rateLimitedBody struct {
	Detail string `json:"detail"`
}

// Middleware gates every request through the global bucket. Rejected
// requests get a 429 with the full header set and the handler is never
// invoked. Allowed requests have the global headers pre-set on the
// response; handlers gated on a specific bucket overwrite them with their
// own bucket's headers.
func Middleware(limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Check(r.Context(), ClientIP(r), GlobalBucket)
			if err != nil {
				if HandleStoreError(w, r, limiter, err) {
					next.ServeHTTP(w, r)
				}
				return
			}

			if !result.Allowed {
				Reject(w, result.Headers)
				return
			}

			result.Headers.Apply(w.Header())
			next.ServeHTTP(w, r)
		})
	}
}

// Reject writes the 429 response with the given headers.
func Reject(w http.ResponseWriter, headers Headers) {
	slog.Warn("rate limit exceeded",
		"bucket", headers.Bucket,
		"count", headers.Count,
		"limit", headers.Limit,
		"retry_after", headers.RetryAfter)

	headers.Apply(w.Header())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(rateLimitedBody{Detail: "You are being rate limited."})
}

// HandleStoreError applies the limiter's outage policy to a Check error.
// It returns true when the request should still be served (fail-open);
// otherwise it has already written the error response.
func HandleStoreError(w http.ResponseWriter, r *http.Request, limiter *Limiter, err error) bool {
	if !errors.Is(err, ErrStoreUnavailable) {
		slog.Error("rate limit check failed", "error", err, "path", r.URL.Path)
		http.Error(w, `{"detail": "Internal server error."}`, http.StatusInternalServerError)
		return false
	}

	if limiter.FailOpen() {
		slog.Warn("counter store unavailable, serving unlimited", "error", err, "path", r.URL.Path)
		return true
	}

	slog.Error("counter store unavailable, rejecting", "error", err, "path", r.URL.Path)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	json.NewEncoder(w).Encode(rateLimitedBody{Detail: "Service temporarily unavailable."})
	return false
}

// ClientIP extracts the client address from the request, preferring proxy
// headers and stripping any port so IPv4 and IPv6 clients key uniformly.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
