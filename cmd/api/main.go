package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/scrapeflow/internal/adapter/chromedp_scraper"
	"github.com/user/scrapeflow/internal/adapter/httpfetch"
	"github.com/user/scrapeflow/internal/adapter/postgres"
	redis_adapter "github.com/user/scrapeflow/internal/adapter/redis"
	"github.com/user/scrapeflow/internal/antidetect"
	"github.com/user/scrapeflow/internal/delivery/http/handler"
	"github.com/user/scrapeflow/internal/delivery/http/router"
	"github.com/user/scrapeflow/internal/entity"
	"github.com/user/scrapeflow/internal/flow"
	"github.com/user/scrapeflow/internal/flowcfg"
	"github.com/user/scrapeflow/internal/monitoring"
	"github.com/user/scrapeflow/internal/repository"
	"github.com/user/scrapeflow/internal/usecase"
	"github.com/user/scrapeflow/pkg/config"
	"github.com/user/scrapeflow/pkg/logger"
	"github.com/user/scrapeflow/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Logger ---
	logLevel := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger.Init(os.Stdout, logLevel, cfg.LogFormat)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	// --- Database Connections ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	pgConnString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
	dbpool, err := pgxpool.New(ctx, pgConnString)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	slog.Info("PostgreSQL connection pool established")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	dedupRepo := redis_adapter.NewDedupRepo(rdb)
	queueRepo := redis_adapter.NewJobQueueRepo(rdb)
	runRepo := postgres.NewRunRepo(dbpool)
	failedJobRepo := postgres.NewFailedJobRepo(dbpool)

	// --- Scraper Drivers ---
	antiDetect := antidetect.NewManager(cfg.UserAgents, cfg.Proxies)
	browserScraper, err := chromedp_scraper.NewChromedpScraper(antiDetect, cfg.MaxConcurrency, cfg.PageLoadTimeout)
	if err != nil {
		slog.Error("Unable to initialize browser scraper", "error", err)
		os.Exit(1)
	}
	scrapers := map[string]repository.ScraperRepository{
		entity.ModeBrowser: browserScraper,
		entity.ModeHTTP:    httpfetch.NewFetcher(antiDetect, cfg.FetchTimeout),
	}

	// --- Reliability Layer ---
	retryPolicy := flow.RetryPolicy{
		MaxRetries:      cfg.MaxRetries,
		InitialDelay:    cfg.InitialDelay,
		MaxDelay:        cfg.MaxDelay,
		ExponentialBase: cfg.ExponentialBase,
		Jitter:          cfg.Jitter,
	}
	if err := retryPolicy.Validate(); err != nil {
		slog.Error("Invalid retry policy", "error", err)
		os.Exit(1)
	}

	var limiter flow.Acquirer
	if cfg.RateLimitEnabled() {
		policy := flow.RateLimitPolicy{
			PerSecond: cfg.RatePerSecond,
			PerMinute: cfg.RatePerMinute,
			Burst:     cfg.RateBurst,
		}
		if cfg.RateAdaptive {
			l, err := flow.NewAdaptiveLimiter(policy)
			if err != nil {
				slog.Error("Invalid rate limit policy", "error", err)
				os.Exit(1)
			}
			limiter = l
		} else {
			l, err := flow.NewLimiter(policy)
			if err != nil {
				slog.Error("Invalid rate limit policy", "error", err)
				os.Exit(1)
			}
			limiter = l
		}
		slog.Info("Rate limiter enabled",
			"per_second", cfg.RatePerSecond, "per_minute", cfg.RatePerMinute,
			"burst", cfg.RateBurst, "adaptive", cfg.RateAdaptive)
	}

	var definition *flowcfg.Definition
	if cfg.WorkflowFile != "" {
		definition, err = flowcfg.Load(cfg.WorkflowFile)
		if err != nil {
			slog.Error("Unable to load workflow definition", "file", cfg.WorkflowFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Workflow definition loaded",
			"file", cfg.WorkflowFile, "workflow", definition.Name, "steps", len(definition.Steps))
	}

	sink := flow.NewAsyncSink(monitoring.NewPromSink(), 1024)
	defer sink.Close()

	// --- Use Cases ---
	jobManager := usecase.NewJobManager(dedupRepo, queueRepo, runRepo, failedJobRepo)
	worker := usecase.NewWorker(queueRepo, scrapers, runRepo, failedJobRepo,
		limiter, sink, retryPolicy, definition, cfg.JobTimeout, cfg.WorkerPollPeriod)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(jobManager)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	<-workerDone
	slog.Info("Shutdown complete")
}
