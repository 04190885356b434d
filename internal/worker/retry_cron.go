package worker

// retry_cron.go
// Failed jobs wait in a sorted set retry:{queue}, scored by the Unix time of
// their next attempt. A background goroutine moves due jobs back onto the
// queue. While the circuit breaker is open the tick is skipped so a downed
// object store is not hammered.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Empasex/Mini-POS/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	RetryPrefix = "retry:"

	retryTickInterval = 10 * time.Second
	retryBatchSize    = 20
	retryBaseDelay    = 15 * time.Second
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	RDB    *redis.Client
	CB     *infra.CircuitBreaker
	Queues []string
}

// retryDelay is exponential: 15s after the first failure, 30s after the second.
func retryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return retryBaseDelay << (attempts - 1)
}

func scheduleRetry(ctx context.Context, rdb *redis.Client, queue string, job Job, now time.Time) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	due := now.Add(retryDelay(job.Attempts))
	return rdb.ZAdd(ctx, RetryPrefix+queue, redis.Z{Score: float64(due.Unix()), Member: encoded}).Err()
}

// StartRetryCron launches the goroutine that re-enqueues due retries.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Strs("queues", cfg.Queues).Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				for _, q := range cfg.Queues {
					requeueDue(ctx, cfg, q, time.Now())
				}
			}
		}
	}()
}

// requeueDue moves up to retryBatchSize due jobs from retry:{queue} back to queue.
func requeueDue(ctx context.Context, cfg RetryCronConfig, queue string, now time.Time) {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Str("queue", queue).Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	key := RetryPrefix + queue
	due, err := cfg.RDB.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("retry_cron: failed to query due retries")
		return
	}

	moved := 0
	for _, member := range due {
		// ZREM decides ownership when several instances tick at once
		n, err := cfg.RDB.ZRem(ctx, key, member).Result()
		if err != nil || n == 0 {
			continue
		}
		if err := cfg.RDB.LPush(ctx, queue, member).Err(); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("retry_cron: requeue failed")
			continue
		}
		moved++
	}
	if moved > 0 {
		log.Info().Str("queue", queue).Int("count", moved).Msg("retry_cron: jobs re-enqueued")
	}
}
