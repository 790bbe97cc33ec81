package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/couchcryptid/disaster-response-service/internal/adapter/gemini"
	httpadapter "github.com/couchcryptid/disaster-response-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/disaster-response-service/internal/adapter/kafka"
	"github.com/couchcryptid/disaster-response-service/internal/adapter/memory"
	"github.com/couchcryptid/disaster-response-service/internal/adapter/postgres"
	"github.com/couchcryptid/disaster-response-service/internal/cache"
	"github.com/couchcryptid/disaster-response-service/internal/config"
	"github.com/couchcryptid/disaster-response-service/internal/disaster"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/eventbus"
	"github.com/couchcryptid/disaster-response-service/internal/geocode"
	"github.com/couchcryptid/disaster-response-service/internal/location"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
	"github.com/couchcryptid/disaster-response-service/internal/pipeline"
	"github.com/couchcryptid/disaster-response-service/internal/resources"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Error("close error", "error", err)
			}
		}
	}()

	// Background workers stop before their clients are closed.
	var workers sync.WaitGroup
	defer workers.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ready := httpadapter.Readiness{}

	// Persistence.
	var (
		db      *sql.DB
		store   domain.DisasterStore
		spatial domain.SpatialQuerier
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, postgres.ConfigFrom(cfg))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		closers = append(closers, db.Close)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		pg := postgres.NewStore(db)
		store, spatial = pg, pg
		ready = append(ready, postgres.Pinger{DB: db})
		logger.Info("postgres store enabled")
	} else {
		store = memory.NewStore()
		spatial = memory.NewResources(memory.SampleResources())
		logger.Warn("DATABASE_URL not set, using in-memory store with sample resources")
	}

	backend, err := openCache(ctx, cfg, db, &closers)
	if err != nil {
		return err
	}
	ttlCache := cache.NewGuarded(backend, cfg.CacheFailOpen, logger, metrics)
	logger.Info("cache ready", "backend", cfg.CacheBackend, "fail_open", cfg.CacheFailOpen)

	bus := eventbus.New(cfg.EventBuffer, nil, logger, metrics)

	// Text understanding and image verification.
	var (
		extractor domain.LocationExtractor
		verifier  domain.ImageVerifier
	)
	if cfg.GeminiAPIKey != "" {
		client := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiVisionModel, cfg.GeminiTimeout, logger)
		extractor, verifier = client, client
		logger.Info("gemini enabled", "model", cfg.GeminiModel, "vision_model", cfg.GeminiVisionModel)
	} else {
		logger.Warn("GEMINI_API_KEY not set, location extraction and image verification are mocked")
	}

	chain := geocode.NewChain(logger, metrics, geocode.ProvidersFromConfig(cfg, logger)...)
	logger.Info("geocoding chain built", "providers", chain.Providers())
	var geocoder domain.Geocoder = chain
	if cfg.GeocodeCacheEnabled {
		geocoder = geocode.NewCached(chain, ttlCache, cfg.CacheDefaultTTL)
	}

	feed := disaster.NewFeed(0)
	svc := disaster.NewService(disaster.Deps{
		Store:      store,
		Resolver:   location.NewResolver(extractor, cfg.LocationPlaceholder, logger),
		Geocoder:   geocoder,
		Cache:      ttlCache,
		Publisher:  bus,
		Verifier:   verifier,
		Social:     feed,
		DefaultTTL: cfg.CacheDefaultTTL,
		UpdatesTTL: cfg.CacheUpdatesTTL,
		Logger:     logger,
	})
	matcher := resources.NewMatcher(store, spatial, ttlCache, bus, cfg.ResourceRadiusKm, cfg.CacheDefaultTTL, logger)

	// Kafka social ingest.
	if cfg.SocialIngestEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		closers = append(closers, reader.Close)
		p := pipeline.New(reader, pipeline.NewTransformer(), pipeline.NewFeedLoader(feed, svc), logger, metrics, cfg.BatchSize)
		workers.Go(func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("social ingest error", "error", err)
			}
		})
		logger.Info("social ingest enabled", "topic", cfg.KafkaSocialTopic, "group_id", cfg.KafkaGroupID)
	}

	// Kafka event mirror.
	if cfg.KafkaEventsTopic != "" {
		mirror := kafkaadapter.NewMirror(cfg, logger)
		sub := bus.Subscribe()
		closers = append(closers, mirror.Close, func() error { bus.Unsubscribe(sub); return nil })
		workers.Go(func() {
			if err := mirror.Run(ctx, sub.Events()); err != nil {
				logger.Error("event mirror error", "error", err)
			}
		})
		logger.Info("event mirror enabled", "topic", cfg.KafkaEventsTopic)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Disasters: svc,
		Resources: matcher,
		Events:    bus,
		Ready:     ready,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func openCache(ctx context.Context, cfg *config.Config, db *sql.DB, closers *[]func() error) (domain.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client, err := cache.OpenRedis(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, client.Close)
		return cache.NewRedis(client, nil), nil
	case config.CachePostgres:
		if db == nil {
			return nil, errors.New("postgres cache requires DATABASE_URL")
		}
		return cache.NewPostgres(db, nil), nil
	default:
		return cache.NewMemory(nil), nil
	}
}
