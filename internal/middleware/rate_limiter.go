package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window rate limiter ────────────────────────────────────────────────
// With Redis the counter is shared by every API instance (INCR + EXPIRE on
// rl:{name}:{ip}). Without it, or when Redis errors, an in-process window is
// used instead so a cache outage never blocks the floor staff.

type windowEntry struct {
	count     int
	windowEnd time.Time
}

type memoryWindow struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
}

func newMemoryWindow() *memoryWindow {
	return &memoryWindow{entries: make(map[string]*windowEntry)}
}

// hit records a request and returns the count in the current window.
func (m *memoryWindow) hit(key string, window time.Duration, now time.Time) (int, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(window)}
		m.entries[key] = e
	}
	e.count++

	// opportunistic purge keeps the map bounded by active clients
	if len(m.entries) > 10000 {
		for k, v := range m.entries {
			if now.After(v.windowEnd) {
				delete(m.entries, k)
			}
		}
	}
	return e.count, e.windowEnd
}

type rateLimiter struct {
	name   string
	limit  int
	window time.Duration
	rdb    *redis.Client
	mem    *memoryWindow
}

func (rl *rateLimiter) count(ctx context.Context, ip string) (int, time.Duration) {
	now := time.Now()
	if rl.rdb != nil {
		key := "rl:" + rl.name + ":" + ip
		pipe := rl.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rl.window)
		ttl := pipe.TTL(ctx, key)
		_, err := pipe.Exec(ctx)
		if err == nil {
			return int(incr.Val()), ttl.Val()
		}
		log.Warn().Err(err).Str("limiter", rl.name).Msg("redis rate limiter unavailable, using memory window")
	}
	n, end := rl.mem.hit(ip, rl.window, now)
	return n, end.Sub(now)
}

// RateLimiter allows limit requests per window per client IP.
// rdb may be nil.
func RateLimiter(rdb *redis.Client, name string, limit int, window time.Duration, msg string) gin.HandlerFunc {
	rl := &rateLimiter{name: name, limit: limit, window: window, rdb: rdb, mem: newMemoryWindow()}
	return func(c *gin.Context) {
		n, retryIn := rl.count(c.Request.Context(), c.ClientIP())
		if n > rl.limit {
			secs := int(retryIn.Seconds())
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(rdb *redis.Client) gin.HandlerFunc {
	return RateLimiter(rdb, "login", 20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")
}

// APIRateLimiter limits general API traffic per IP.
func APIRateLimiter(rdb *redis.Client, limit int) gin.HandlerFunc {
	return RateLimiter(rdb, "api", limit, time.Minute, "Demasiadas solicitudes. Intente nuevamente en un momento.")
}
