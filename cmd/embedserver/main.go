package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"embedserver/internal/api"
	"embedserver/internal/config"
	"embedserver/internal/embed"
	"embedserver/internal/logger"
	"embedserver/internal/models"
	"embedserver/internal/observability"
	"embedserver/internal/ratelimit"
	"embedserver/internal/storage"
	"embedserver/internal/version"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetInfo().String())
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	log, closer, err := logger.Setup(cfg.Logging, version.GetInfo())
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	// Initialize observability (OpenTelemetry)
	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, version.GetInfo())
	if err != nil {
		slog.Error("Failed to initialize observability", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()

	// Initialize storage
	storageInstance, err := storage.NewFactory().Create(cfg.Storage)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err, "type", cfg.Storage.Type)
		os.Exit(1)
	}
	defer storageInstance.Close()

	// Wrap storage with instrumentation if metrics are enabled
	var activeStorage storage.Storage = storageInstance
	if cfg.Metrics.Enabled {
		instrumented, err := observability.NewInstrumentedStorage(storageInstance)
		if err != nil {
			slog.Error("Failed to create instrumented storage", "error", err)
			os.Exit(1)
		}
		activeStorage = instrumented
	}

	// Connect the rate limit counter store. The service does not start
	// without it; limits cannot be enforced on a store that is down.
	counterStore, err := ratelimit.NewRedisStore(ratelimit.RedisOptions{
		Host:     cfg.RateLimit.Redis.Host,
		Port:     cfg.RateLimit.Redis.Port,
		Password: cfg.RateLimit.Redis.Password,
		DB:       cfg.RateLimit.Redis.DB,
	})
	if err != nil {
		slog.Error("Failed to connect rate limit counter store", "error", err)
		os.Exit(1)
	}
	defer counterStore.Close()

	var activeCounterStore ratelimit.CounterStore = counterStore
	if cfg.Metrics.Enabled {
		instrumented, err := observability.NewInstrumentedCounterStore(counterStore)
		if err != nil {
			slog.Error("Failed to create instrumented counter store", "error", err)
			os.Exit(1)
		}
		activeCounterStore = instrumented
	}

	registry, err := ratelimit.NewRegistry(bucketsFromConfig(cfg.RateLimit.Buckets))
	if err != nil {
		slog.Error("Invalid rate limit bucket configuration", "error", err)
		os.Exit(1)
	}
	limiter := ratelimit.New(registry, activeCounterStore,
		ratelimit.WithFailOpen(cfg.RateLimit.FailOpen),
	)

	// Initialize embed service
	embedService := embed.NewService(activeStorage, log, cfg.Embed)

	// Initialize HTTP handlers
	handlers := api.NewHandlers(embedService, activeStorage, limiter, cfg.Server.BaseURL)

	// Setup routes with middleware
	routeOpts := []api.RouteOption{api.WithRateLimiter(limiter)}
	if cfg.Observability.Tracing.Enabled {
		routeOpts = append(routeOpts, api.WithOTelMiddleware(cfg.Observability.ServiceName))
	}

	router, err := api.SetupRoutes(handlers, cfg, routeOpts...)
	if err != nil {
		slog.Error("Failed to set up routes", "error", err)
		os.Exit(1)
	}

	// Start metrics server if enabled
	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = observability.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, otelProvider)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "addr", server.Addr)

		var err error
		if cfg.Server.TLSEnabled {
			if cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "" {
				slog.Error("TLS is enabled but cert file or key file is not specified")
				os.Exit(1)
			}
			slog.Info("Starting HTTPS server with TLS")
			err = server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			slog.Info("Starting HTTP server")
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	// Create a deadline to wait for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown metrics server
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server shutdown complete")
}

// bucketsFromConfig converts configured bucket entries into registry buckets.
// An empty list keeps the built-in table.
func bucketsFromConfig(configured []models.BucketConfig) []ratelimit.Bucket {
	buckets := make([]ratelimit.Bucket, 0, len(configured))
	for _, b := range configured {
		buckets = append(buckets, ratelimit.Bucket{
			Name:   b.Name,
			Limit:  b.Limit,
			Window: time.Duration(b.WindowSeconds) * time.Second,
		})
	}
	return buckets
}
