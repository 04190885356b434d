// cmd/archiver/main.go: Ejecuta un lote de archivado y termina.
// Uso: go run ./cmd/archiver -batch-size 500
// Sale con 0 si archivó o no había nada que archivar, 1 ante cualquier error.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Empasex/Mini-POS/internal/config"
	"github.com/Empasex/Mini-POS/internal/infra"
	"github.com/Empasex/Mini-POS/internal/repository"
	"github.com/Empasex/Mini-POS/internal/service"
	"github.com/Empasex/Mini-POS/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	batchSize := flag.Int("batch-size", service.DefaultBatchSize, fmt.Sprintf("ventas por lote (1-%d)", service.MaxBatchSize))
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to database")
		return 1
	}
	if cfg.DBAutoMigrate {
		if err := infra.RunMigrations(db); err != nil {
			log.Error().Err(err).Msg("failed to run migrations")
			return 1
		}
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to redis")
		return 1
	}

	// The server's worker pool uploads the snapshot; only enqueue when one is configured.
	var dispatcher *worker.Dispatcher
	if cfg.SnapshotBucket != "" {
		dispatcher = worker.NewDispatcher(rdb)
	}

	svc := service.NewArchivoService(
		repository.NewVentaRepository(db),
		repository.NewProductoRepository(db),
		repository.NewArchivoRepository(db),
		infra.NewRedisLocker(rdb, cfg.ArchiveLockTTL()),
		dispatcher,
		nil,
	)

	resp, err := svc.Ejecutar(ctx, *batchSize)
	if err != nil {
		log.Error().Err(err).Int("batch_size", *batchSize).Msg("archive run failed")
		return 1
	}
	if resp.BatchID == nil {
		fmt.Println(resp.Mensaje)
		return 0
	}
	fmt.Printf("batch %s: %d ventas archivadas en %d resumenes\n", *resp.BatchID, resp.Archivadas, resp.Resumenes)
	return 0
}
