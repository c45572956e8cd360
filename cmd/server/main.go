package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"collreg/internal/collections/store"
	"collreg/internal/collections/store/mappingcache"
	"collreg/internal/collections/store/memory"
	"collreg/internal/collections/store/postgres"
	"collreg/internal/events"
	"collreg/internal/lookup"
	lookuphandler "collreg/internal/lookup/handler"
	lookupmetrics "collreg/internal/lookup/metrics"
	"collreg/internal/platform/config"
	"collreg/internal/platform/httpserver"
	"collreg/internal/platform/logger"
	"collreg/internal/platform/metrics"
	platformredis "collreg/internal/platform/redis"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Matching logic lives in internal/lookup.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	institutions, collections, cleanupStores, err := buildStores(cfg, log)
	if err != nil {
		log.Error("store initialization failed", "error", err.Error())
		os.Exit(1)
	}
	defer cleanupStores()

	var notifier lookup.Notifier
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, events.WithLogger(log))
		if err != nil {
			log.Error("event publisher initialization failed", "error", err.Error())
			os.Exit(1)
		}
		defer publisher.Close()
		notifier = publisher
	}

	service := lookup.NewService(institutions, collections, lookupmetrics.New(), log, notifier)

	router := chi.NewRouter()
	lookuphandler.New(service, log, metrics.New()).Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting collreg", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
}

// buildStores selects the backing stores: PostgreSQL when a database URL is
// configured, in-memory otherwise. A configured Redis adds the mapping cache
// in front of either.
func buildStores(cfg config.Server, log *slog.Logger) (store.InstitutionStore, store.CollectionStore, func(), error) {
	var (
		institutions store.InstitutionStore
		collections  store.CollectionStore
		cleanups     []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, cleanup, err
		}
		cleanups = append(cleanups, func() { _ = db.Close() })

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return nil, nil, cleanup, err
		}
		institutions = postgres.NewInstitutions(db)
		collections = postgres.NewCollections(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		institutions = memory.NewInstitutions()
		collections = memory.NewCollections()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, cleanup, err
	}
	if redisClient != nil {
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		cacheMetrics := mappingcache.NewMetrics()
		institutions = mappingcache.New(institutions, "institution", redisClient, config.MappingCacheTTL, log, cacheMetrics)
		collections = mappingcache.New(collections, "collection", redisClient, config.MappingCacheTTL, log, cacheMetrics)
	}

	return institutions, collections, cleanup, nil
}
