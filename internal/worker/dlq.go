package worker

// dlq.go
// Snapshot jobs that exhaust MaxAttempts, or whose payload can never be
// processed, end up in dlq:{queue}. Entries keep the batch id at the top level
// so an operator can re-run the export for that batch by hand.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is one dead-lettered job.
type DLQEntry struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	BatchID  string          `json:"batch_id,omitempty"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

func newDLQEntry(queue string, job Job, reason string, at time.Time) DLQEntry {
	payload := job.Payload
	if !json.Valid(payload) {
		payload, _ = json.Marshal(string(payload))
	}
	var p SnapshotJobPayload
	_ = json.Unmarshal(payload, &p)
	return DLQEntry{
		Queue:    queue,
		Type:     job.Type,
		BatchID:  p.BatchID,
		Payload:  payload,
		Reason:   reason,
		Attempts: job.Attempts,
		FailedAt: at.UTC(),
	}
}

// sendToDLQ never fails the caller; a lost DLQ write is logged with the batch id.
func sendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	entry := newDLQEntry(queue, job, reason, time.Now())
	data, err := json.Marshal(entry)
	if err == nil {
		err = rdb.LPush(ctx, DLQPrefix+queue, data).Err()
	}
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Str("batch_id", entry.BatchID).Msg("dlq: could not store failed job")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("batch_id", entry.BatchID).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("dlq: job dead-lettered")
}

// DLQLength is reported by /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// PeekDLQ returns up to n of the most recent entries without removing them.
func PeekDLQ(ctx context.Context, rdb *redis.Client, queue string, n int64) ([]DLQEntry, error) {
	raw, err := rdb.LRange(ctx, DLQPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raw))
	for _, r := range raw {
		var e DLQEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
