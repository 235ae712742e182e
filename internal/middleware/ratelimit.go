package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/respond"

	"golang.org/x/time/rate"
)

// RateLimiter limita requests por usuario (si hay claims) o por IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rate     rate.Limit
	burst    int
	idle     time.Duration
	log      logger.Logger
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter con rps <= 0 devuelve nil; Handler de un nil no limita nada.
func NewRateLimiter(rps float64, burst int, log logger.Logger) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RateLimiter{
		limiters: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		log:      log,
		now:      time.Now,
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.limiters[key]
	if !ok {
		// lastSeen antes del barrido, si no el recién creado se va con los viejos
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst), lastSeen: now}
		rl.limiters[key] = v
		rl.evictIdle(now)
	}
	v.lastSeen = now
	return v.limiter
}

// evictIdle barre visitantes viejos al crear uno nuevo; sin goroutines de fondo.
func (rl *RateLimiter) evictIdle(now time.Time) {
	for k, v := range rl.limiters {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.limiters, k)
		}
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !rl.get(key).AllowN(rl.now(), 1) {
			rl.log.Warn("rate limit exceeded", map[string]any{
				"key":    key,
				"method": r.Method,
				"path":   r.URL.Path,
			})
			w.Header().Set("Retry-After", "1")
			respond.Fail(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if c, ok := GetClaims(r.Context()); ok && c.UserID != "" {
		return "user:" + c.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
