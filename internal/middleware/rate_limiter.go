package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Empasex/Mini-POS/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter is a per-IP windowed limiter. Each instance keeps its own
// table, so the archive trigger can be limited separately from reads.
type RateLimiter struct {
	name   string
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*rateEntry
}

// NewRateLimiter allows limit requests per window per client IP.
func NewRateLimiter(name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		name:    name,
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*rateEntry),
	}
}

// allow records one hit for key and reports whether it is within the limit,
// plus the time the current window closes.
func (rl *RateLimiter) allow(key string) (bool, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, ok := rl.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(rl.window)}
		rl.entries[key] = e
	}
	e.count++
	return e.count <= rl.limit, e.windowEnd
}

// Middleware enforces the limit. Rejected requests get 429 with Retry-After
// in seconds.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := rl.allow(c.ClientIP())
		if !ok {
			retry := int(windowEnd.Sub(rl.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// purge drops expired entries and returns how many were removed.
func (rl *RateLimiter) purge() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	purged := 0
	for ip, e := range rl.entries {
		if now.After(e.windowEnd) {
			delete(rl.entries, ip)
			purged++
		}
	}
	return purged
}

// StartPurge removes expired entries every few minutes until ctx is done,
// so IPs that never return do not accumulate.
func (rl *RateLimiter) StartPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := rl.purge(); n > 0 {
					log.Debug().Str("limiter", rl.name).Int("purged", n).Msg("rate limiter entries purged")
				}
			}
		}
	}()
}
