package api

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	embedsvc "embedserver/internal/embed"
	"embedserver/internal/models"
	"embedserver/internal/ratelimit"
	"embedserver/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRoutes_RejectsBucketTableMissingRouteBucket(t *testing.T) {
	store := storage.NewMemoryStorage()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := embedsvc.NewService(store, logger, models.EmbedConfig{
		CodeSize:    6,
		CodeCharset: "0123456789abcdef",
	})

	// A wholesale override that forgets the create bucket. Every listed
	// bucket is well formed, so the registry itself accepts it.
	reg, err := ratelimit.NewRegistry([]ratelimit.Bucket{
		{Name: ratelimit.GlobalBucket, Limit: 60, Window: 30 * time.Second},
		{Name: "generate", Limit: 30, Window: 30 * time.Second},
		{Name: "update", Limit: 10, Window: 60 * time.Second},
		{Name: "delete", Limit: 15, Window: 60 * time.Second},
	})
	require.NoError(t, err)
	limiter := ratelimit.New(reg, ratelimit.NewMemoryStore())

	handlers := NewHandlers(svc, store, limiter, "")
	router, err := SetupRoutes(handlers, models.NewDefaultConfig(), WithRateLimiter(limiter))

	require.Error(t, err, "a bucket table missing a route bucket must fail at registration")
	assert.ErrorIs(t, err, ratelimit.ErrUnknownBucket)
	assert.Contains(t, err.Error(), "create")
	assert.Nil(t, router)
}

func TestSetupRoutes_RateLimitedResponseKeepsInfrastructureHeaders(t *testing.T) {
	store := storage.NewMemoryStorage()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := embedsvc.NewService(store, logger, models.EmbedConfig{
		CodeSize:    6,
		CodeCharset: "0123456789abcdef",
	})

	// One global request per window so the second request is rejected.
	reg, err := ratelimit.NewRegistry([]ratelimit.Bucket{
		{Name: ratelimit.GlobalBucket, Limit: 1, Window: 30 * time.Second},
		{Name: "generate", Limit: 30, Window: 30 * time.Second},
		{Name: "create", Limit: 10, Window: 60 * time.Second},
		{Name: "update", Limit: 10, Window: 60 * time.Second},
		{Name: "delete", Limit: 15, Window: 60 * time.Second},
	})
	require.NoError(t, err)
	limiter := ratelimit.New(reg, ratelimit.NewMemoryStore())

	cfg := models.NewDefaultConfig()
	cfg.Server.CORS.Enabled = true
	cfg.Server.CORS.AllowedOrigins = []string{"*"}
	cfg.Server.CORS.AllowedMethods = []string{"GET", "POST"}

	handlers := NewHandlers(svc, store, limiter, "")
	router, err := SetupRoutes(handlers, cfg, WithRateLimiter(limiter))
	require.NoError(t, err)

	rec := doRequest(router, "GET", "/health", "198.51.100.20", nil,
		map[string]string{"Origin": "https://example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, "GET", "/health", "198.51.100.20", nil,
		map[string]string{"Origin": "https://example.com"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// The gate runs inside the infrastructure chain, so even rejected
	// requests carry a request ID and CORS headers.
	assert.Regexp(t, uuidPattern, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "global", rec.Header().Get("X-RateLimit-Bucket"))
}
