package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"embedserver/internal/models"
	"embedserver/internal/ratelimit"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// RouteOption configures optional route behavior.
type RouteOption func(*mux.Router)

// WithOTelMiddleware adds OpenTelemetry HTTP instrumentation middleware.
func WithOTelMiddleware(serviceName string) RouteOption {
	return func(r *mux.Router) {
		r.Use(otelmux.Middleware(serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/health" && r.URL.Path != "/metrics"
			}),
		))
	}
}

// WithRateLimiter gates every route through the limiter's global bucket.
func WithRateLimiter(limiter *ratelimit.Limiter) RouteOption {
	return func(r *mux.Router) {
		r.Use(ratelimit.Middleware(limiter))
	}
}

// routeBuckets are all bucket names the routes below charge. A configured
// bucket table must cover every one of them or the server refuses to start.
var routeBuckets = []string{
	ratelimit.GlobalBucket,
	bucketGenerate,
	bucketCreate,
	bucketUpdate,
	bucketDelete,
}

// SetupRoutes configures the HTTP routes for the API. It fails when the
// limiter's bucket table is missing a bucket the routes charge, so a bad
// override surfaces at startup instead of as per-request errors.
func SetupRoutes(handlers *Handlers, config *models.Config, opts ...RouteOption) (*mux.Router, error) {
	if err := handlers.limiter.Registry().Validate(routeBuckets...); err != nil {
		return nil, fmt.Errorf("bucket table does not cover the routes: %w", err)
	}

	router := mux.NewRouter()

	router.HandleFunc("/", handlers.Root).Methods("GET")
	router.HandleFunc("/health", handlers.HealthCheck).Methods("GET")

	// /embed/quick must register before /embed/{code} so "quick" is not
	// swallowed by the code variable.
	router.HandleFunc("/embed/quick", handlers.QuickEmbed).Methods("GET")
	router.HandleFunc("/embed/create", handlers.CreateEmbed).Methods("POST")
	router.HandleFunc("/embed/{code}", handlers.GetEmbed).Methods("GET")
	router.HandleFunc("/embed/{code}", handlers.UpdateEmbed).Methods("PUT")
	router.HandleFunc("/embed/{code}", handlers.DeleteEmbed).Methods("DELETE")

	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware)
	router.Use(recoveryMiddleware)

	if config.Server.CORS.Enabled {
		router.Use(corsMiddleware(config.Server.CORS))
	}

	// Gate middlewares register last so they run inside the infrastructure
	// chain: rejected requests still get a request ID, CORS headers and a
	// log line.
	for _, opt := range opts {
		opt(router)
	}

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		errorResp := models.NewErrorResponse("Method not allowed", models.ErrorCodeBadRequest)
		json.NewEncoder(w).Encode(errorResp)
	})

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		errorResp := models.NewErrorResponse("Not found", models.ErrorCodeNotFound)
		json.NewEncoder(w).Encode(errorResp)
	})

	return router, nil
}
