package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/assessment-api/cmd/mainconfig"
	"github.com/wolfman30/assessment-api/internal/api/router"
	"github.com/wolfman30/assessment-api/internal/app/bootstrap"
	appconfig "github.com/wolfman30/assessment-api/internal/config"
	"github.com/wolfman30/assessment-api/internal/diagnostics"
	"github.com/wolfman30/assessment-api/internal/leads"
	"github.com/wolfman30/assessment-api/internal/observability/metrics"
	"github.com/wolfman30/assessment-api/pkg/logging"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting assessment API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.close()

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// The store retry budget can exceed 15s.
		WriteTimeout: 60 * time.Second,
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
	}
	if err := a.service.Wait(shutdownCtx); err != nil {
		logger.Warn("pending notifications abandoned", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type app struct {
	handler http.Handler
	service *leads.Service
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	a := &app{}
	metricsHandler, leadMetrics := setupMetrics()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
	}
	limiter, memStore, err := bootstrap.BuildRateLimiter(cfg, redisClient, logger)
	if err != nil {
		return nil, err
	}
	if memStore != nil {
		go memStore.Run(ctx, time.Minute)
	}
	logger.Info("rate limiting configured",
		"backend", rateLimitBackend(redisClient),
		"limit", limiter.Limit(),
		"window", limiter.Window().String(),
	)

	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		a.closers = append(a.closers, pool.Close)
	}
	ledger := bootstrap.BuildLedger(pool)
	logger.Info("submission ledger configured", "backend", ledgerBackend(pool))

	client, err := bootstrap.BuildRecordStore(cfg, leadMetrics, logger)
	if err != nil {
		return nil, err
	}

	var awsCfg *aws.Config
	if cfg.NeedsAWS() {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = &loaded
	}

	// Interfaces stay nil when the record store is not configured.
	var (
		store     leads.RecordStore
		inspector leads.StoreInspector
		recordURL func(string) string
	)
	if client != nil {
		store, inspector, recordURL = client, client, client.RecordURL
	}
	dispatcher := bootstrap.BuildDispatcher(cfg, awsCfg, recordURL, leadMetrics, logger)

	a.service = leads.NewService(leads.ServiceConfig{
		Store:         store,
		Ledger:        ledger,
		Notifier:      dispatcher,
		Metrics:       leadMetrics,
		Logger:        logger,
		MaxAttempts:   cfg.SubmitMaxAttempts,
		NotifyTimeout: cfg.NotifyTimeout,
		NotifyWait:    cfg.NotifyWait,
	})
	leadsHandler := leads.NewHandler(leads.HandlerConfig{
		Service:   a.service,
		Inspector: inspector,
		Ledger:    ledger,
		HasBaseID: cfg.AirtableBaseID != "",
		HasAPIKey: cfg.AirtableAPIKey != "",
		TableName: cfg.AirtableTableName,
		Logger:    logger,
	})

	a.handler = router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		Diagnostics:        diagnostics.NewRunner(cfg, inspector, limiter, logger),
		Limiter:            limiter,
		Metrics:            leadMetrics,
		MetricsHandler:     metricsHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	})
	return a, nil
}

func setupMetrics() (http.Handler, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewLeadMetrics(reg)
}

func rateLimitBackend(client *redis.Client) string {
	if client != nil {
		return "redis"
	}
	return "memory"
}

func ledgerBackend(pool *pgxpool.Pool) string {
	if pool != nil {
		return "postgres"
	}
	return "memory"
}
