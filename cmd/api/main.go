package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/healpointhq/clinic-platform/internal/api/router"
	"github.com/healpointhq/clinic-platform/internal/assistant"
	"github.com/healpointhq/clinic-platform/internal/booking"
	appconfig "github.com/healpointhq/clinic-platform/internal/config"
	"github.com/healpointhq/clinic-platform/internal/directory"
	"github.com/healpointhq/clinic-platform/internal/gate"
	"github.com/healpointhq/clinic-platform/internal/observability/metrics"
	"github.com/healpointhq/clinic-platform/internal/state"
	"github.com/healpointhq/clinic-platform/internal/store"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Connect to Redis and hydrate the clinic state
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancel()
		logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	container := state.New(store.New(redisClient, logger))
	if err := container.Load(ctx); err != nil {
		cancel()
		logger.Error("failed to load clinic state", "error", err)
		os.Exit(1)
	}
	cancel()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	clinicMetrics := metrics.NewClinicMetrics(registry)

	// Triage assistant. Without a Gemini key the assistant degrades to its
	// static fallback reply instead of failing startup.
	var generator assistant.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to initialize gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		generator = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant replies with fallback only")
	}

	// Initialize services and handlers
	directoryService := directory.NewService(container, logger, clinicMetrics)
	bookingWorkflow := booking.NewWorkflow(container, logger, clinicMetrics)
	bridge := assistant.NewBridge(generator, container, logger, clinicMetrics)
	adminGate := gate.New(cfg.AdminPassword, logger, clinicMetrics)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		DirectoryHandler:   directory.NewHandler(directoryService, container, logger),
		BookingHandler:     booking.NewHandler(bookingWorkflow, container, logger),
		AssistantHandler:   assistant.NewHandler(bridge, logger),
		GateHandler:        gate.NewHandler(adminGate, logger),
		Gate:               adminGate,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis client", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
