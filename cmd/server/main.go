package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"veridoc/internal/audit"
	"veridoc/internal/batch"
	batchhandler "veridoc/internal/batch/handler"
	batchmetrics "veridoc/internal/batch/metrics"
	"veridoc/internal/docstore"
	"veridoc/internal/extraction"
	"veridoc/internal/extraction/gemini"
	extractionmetrics "veridoc/internal/extraction/metrics"
	httpapi "veridoc/internal/http"
	"veridoc/internal/jwttoken"
	"veridoc/internal/platform/config"
	"veridoc/internal/platform/httpserver"
	"veridoc/internal/platform/logger"
	platformredis "veridoc/internal/platform/redis"
	"veridoc/internal/validation"
	"veridoc/internal/watchlist"
)

// unavailableClient stands in for the generative service when no API key is
// configured, forcing every document through the deterministic fallback.
type unavailableClient struct{}

func (unavailableClient) Generate(context.Context, string) (string, error) {
	return "", extraction.NewClientError(extraction.ErrorProviderOutage, "generative service not configured", nil)
}

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var checks []httpapi.Check

	// generative structuring client
	var client extraction.Client = unavailableClient{}
	if cfg.Extraction.GeminiAPIKey != "" {
		geminiClient, err := gemini.New(ctx, cfg.Extraction.GeminiAPIKey, cfg.Extraction.GeminiModel)
		if err != nil {
			log.Error("gemini client init failed", "error", err)
			os.Exit(1)
		}
		defer geminiClient.Close()
		client = geminiClient
	} else {
		log.Warn("no gemini API key configured, running in fallback-only mode")
	}

	// extraction record cache
	requesterOpts := []extraction.Option{
		extraction.WithMetrics(extractionmetrics.New()),
	}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		requesterOpts = append(requesterOpts, extraction.WithCache(
			extraction.NewRedisRecordCache(redisClient.Client, extraction.WithTTL(cfg.Extraction.CacheTTL)),
		))
		checks = append(checks, httpapi.Check{Name: "redis", Probe: redisClient.Health})
	}

	requester := extraction.NewRequester(client, extraction.Config{
		Timeout:          cfg.Extraction.Timeout,
		MaxResponseBytes: cfg.Extraction.MaxResponseBytes,
	}, log, requesterOpts...)

	// envelope store
	var store docstore.Store = docstore.NewInMemoryStore()
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		store = docstore.NewPostgresStore(db)
		checks = append(checks, httpapi.Check{Name: "postgres", Probe: db.PingContext})
	} else {
		log.Warn("no postgres DSN configured, envelopes are stored in memory")
	}

	// audit trail
	var sink audit.Sink = audit.NewInMemoryStore()
	if len(cfg.Kafka.Seeds) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Seeds, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka sink init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	} else {
		log.Warn("no kafka seeds configured, audit events are stored in memory")
	}
	publisher := audit.NewPublisher(sink, audit.WithAsyncBuffer(cfg.Batch.AuditBuffer))
	defer publisher.Close()

	// decision pipeline
	engine := validation.NewEngine(validation.Config{
		HighRiskJurisdictions: cfg.Validation.HighRiskJurisdictions,
	})
	matcher := watchlist.NewMatcher(watchlist.DefaultEntries())
	service := batch.NewService(requester, engine, matcher, store, publisher, log,
		batch.WithMetrics(batchmetrics.New()),
		batch.WithWorkers(cfg.Batch.Workers),
	)

	jwtService := jwttoken.NewService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	handler := batchhandler.New(service, log)
	router := httpapi.NewRouter(handler, jwtService, log, checks...)

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting veridoc", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
