package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueSnapshot = "jobs:snapshot"
	JobSnapshot   = "snapshot"

	// MaxAttempts is how many times a job runs before it lands in the DLQ.
	MaxAttempts = 3
)

// ErrJobInvalido marks a job that can never succeed (bad payload, unknown
// type). It goes straight to the DLQ without retries.
var ErrJobInvalido = errors.New("job invalido")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A non-nil error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

// NewDispatcher returns nil when rdb is nil; callers treat a nil dispatcher
// as "async jobs disabled".
func NewDispatcher(rdb *redis.Client) *Dispatcher {
	if rdb == nil {
		return nil
	}
	return &Dispatcher{rdb: rdb}
}

// SnapshotJobPayload is the payload of a QueueSnapshot job.
type SnapshotJobPayload struct {
	BatchID string `json:"batch_id"`
}

// EnqueueSnapshot queues the Parquet export of an archived batch.
func (d *Dispatcher) EnqueueSnapshot(ctx context.Context, batchID string) error {
	return d.enqueue(ctx, QueueSnapshot, JobSnapshot, SnapshotJobPayload{BatchID: batchID})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the queues that
// have a handler. Each goroutine blocks on BRPOP, zero CPU when idle.
// The returned WaitGroup completes once every worker has seen ctx.Done().
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) *sync.WaitGroup {
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, id, queues, handlers)
		}(i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
	return &wg
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, queues []string, handlers map[string]Handler) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		sendToDLQ(ctx, rdb, queue, Job{Payload: json.RawMessage(raw)}, "envelope: "+err.Error())
		return
	}
	handler, ok := handlers[queue]
	if !ok {
		sendToDLQ(ctx, rdb, queue, job, "no handler for queue")
		return
	}

	err := handler(ctx, job.Payload)
	if err == nil {
		return
	}
	job.Attempts++
	switch {
	case errors.Is(err, ErrJobInvalido):
		sendToDLQ(ctx, rdb, queue, job, err.Error())
	case job.Attempts >= MaxAttempts:
		sendToDLQ(ctx, rdb, queue, job, err.Error())
	default:
		if serr := scheduleRetry(ctx, rdb, queue, job, time.Now()); serr != nil {
			log.Error().Err(serr).Str("queue", queue).Msg("worker: could not schedule retry")
			sendToDLQ(ctx, rdb, queue, job, err.Error())
			return
		}
		log.Warn().Err(err).
			Str("queue", queue).
			Str("type", job.Type).
			Int("attempts", job.Attempts).
			Msg("worker: job failed, retry scheduled")
	}
}
