package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Empasex/Mini-POS/internal/config"
	"github.com/Empasex/Mini-POS/internal/infra"
	"github.com/Empasex/Mini-POS/internal/middleware"
	"github.com/Empasex/Mini-POS/internal/repository"
	"github.com/Empasex/Mini-POS/internal/router"
	"github.com/Empasex/Mini-POS/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// runLimitPerMinute caps manual archive triggers per client IP.
const runLimitPerMinute = 10

// @title          Mini-POS Archive API
// @version        1.0
// @description    Archivado de ventas en resúmenes por producto y reportes sobre el archivo.
// @BasePath       /
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.DBAutoMigrate {
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb == nil {
		log.Warn().Msg("REDIS_URL not set: archive lock and snapshot queue disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := infra.NewMetrics(prometheus.DefaultRegisterer)
	snapshotCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("snapshot-store"))

	store, err := infra.NewSnapshotStore(ctx, infra.SnapshotStoreConfig{
		Bucket:   cfg.SnapshotBucket,
		Prefix:   cfg.SnapshotPrefix,
		Region:   cfg.SnapshotRegion,
		Endpoint: cfg.SnapshotEndpoint,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure snapshot store")
	}

	// Snapshot jobs are only queued when something will consume them.
	var (
		dispatcher *worker.Dispatcher
		workersWG  *sync.WaitGroup
	)
	if rdb != nil && store != nil {
		dispatcher = worker.NewDispatcher(rdb)
		snapshotWorker := worker.NewSnapshotWorker(repository.NewArchivoRepository(db), store, snapshotCB, metrics)
		workersWG = worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.Handler{
			worker.QueueSnapshot: snapshotWorker.Process,
		})
		worker.StartRetryCron(ctx, worker.RetryCronConfig{
			RDB:    rdb,
			CB:     snapshotCB,
			Queues: []string{worker.QueueSnapshot},
		})
	} else {
		log.Info().Msg("snapshot export disabled")
	}

	globalLimiter := middleware.NewRateLimiter("global", cfg.RateLimitPerMinute, time.Minute)
	runLimiter := middleware.NewRateLimiter("archive-run", runLimitPerMinute, time.Minute)
	globalLimiter.StartPurge(ctx)
	runLimiter.StartPurge(ctx)

	r := router.New(cfg, router.Deps{
		DB:            db,
		Redis:         rdb,
		Locker:        infra.NewRedisLocker(rdb, cfg.ArchiveLockTTL()),
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Gatherer:      prometheus.DefaultGatherer,
		SnapshotCB:    snapshotCB,
		GlobalLimiter: globalLimiter,
		RunLimiter:    runLimiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Mini-POS archive backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if workersWG != nil {
		workersWG.Wait()
	}
	log.Info().Msg("server exited")
}

// setupLogger: dev gets the pretty console writer, production plain JSON.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
