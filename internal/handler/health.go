package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Empasex/Mini-POS/internal/infra"
	"github.com/Empasex/Mini-POS/internal/repository"
	"github.com/Empasex/Mini-POS/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// dlqPeek is how many dead-lettered batch ids /health lists.
const dlqPeek = 5

// Health returns a JSON health check response.
// The database is required; Redis and the snapshot breaker are reported but
// only degrade the status when Redis is configured and unreachable.
// ventas_pendientes is the live sale backlog waiting to be archived.
func Health(db *gorm.DB, ventas repository.VentaRepository, rdb *redis.Client, cb *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus}
		if dbStatus == "connected" {
			if n, err := ventas.Count(ctx); err == nil {
				body["ventas_pendientes"] = n
			}
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else if n, err := worker.DLQLength(ctx, rdb, worker.QueueSnapshot); err == nil {
				body["snapshot_dlq"] = n
				if n > 0 {
					body["snapshot_dlq_recent"] = recentDLQBatches(ctx, rdb)
				}
			}
		}
		body["redis"] = redisStatus

		if cb != nil {
			body["snapshot_breaker"] = cb.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK

		c.JSON(status, body)
	}
}

// recentDLQBatches lists the batch ids of the newest dead-lettered snapshots,
// the ones an operator would re-export by hand.
func recentDLQBatches(ctx context.Context, rdb *redis.Client) []string {
	entries, err := worker.PeekDLQ(ctx, rdb, worker.QueueSnapshot, dlqPeek)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.BatchID)
	}
	return ids
}
