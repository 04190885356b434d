package worker

// snapshot_worker.go
// Processes QueueSnapshot jobs: loads the summaries of an archived batch,
// encodes them as Parquet and uploads the object through the circuit breaker.
// A batch deleted before its job runs is skipped.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Empasex/Mini-POS/internal/infra"
	"github.com/Empasex/Mini-POS/internal/model"
	"github.com/Empasex/Mini-POS/internal/repository"

	"github.com/rs/zerolog/log"
)

// SnapshotUploader stores the snapshot of one batch and returns its URI.
type SnapshotUploader interface {
	Put(ctx context.Context, batchID string, rows []model.ResumenArchivo) (string, error)
}

type SnapshotWorker struct {
	repo    repository.ArchivoRepository
	store   SnapshotUploader
	cb      *infra.CircuitBreaker
	metrics *infra.Metrics
}

func NewSnapshotWorker(repo repository.ArchivoRepository, store SnapshotUploader, cb *infra.CircuitBreaker, metrics *infra.Metrics) *SnapshotWorker {
	return &SnapshotWorker{repo: repo, store: store, cb: cb, metrics: metrics}
}

// Process handles a single snapshot job. It satisfies Handler.
func (w *SnapshotWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload SnapshotJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrJobInvalido, err)
	}
	if payload.BatchID == "" {
		return fmt.Errorf("%w: batch_id vacio", ErrJobInvalido)
	}

	rows, err := w.repo.ListByBatch(ctx, payload.BatchID)
	if err != nil {
		w.metrics.ObserveSnapshot("error")
		return fmt.Errorf("cargar lote %s: %w", payload.BatchID, err)
	}
	if len(rows) == 0 {
		w.metrics.ObserveSnapshot("skipped")
		log.Warn().Str("batch_id", payload.BatchID).Msg("snapshot_worker: batch no longer exists, skipping")
		return nil
	}

	var uri string
	err = w.cb.Execute(ctx, func(ctx context.Context) error {
		var perr error
		uri, perr = w.store.Put(ctx, payload.BatchID, rows)
		return perr
	})
	if err != nil {
		w.metrics.ObserveSnapshot("error")
		return fmt.Errorf("subir snapshot %s: %w", payload.BatchID, err)
	}

	w.metrics.ObserveSnapshot("ok")
	log.Info().
		Str("batch_id", payload.BatchID).
		Int("rows", len(rows)).
		Str("uri", uri).
		Msg("snapshot_worker: snapshot uploaded")
	return nil
}
