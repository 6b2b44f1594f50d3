package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/pkg/config"
)

// idleTTL is how long an unused client bucket is kept.
const idleTTL = 10 * time.Minute

// RateLimiter applies a token bucket per client address. Its settings can
// be replaced at runtime with Update.
type RateLimiter struct {
	mu      sync.Mutex
	enabled bool
	limit   rate.Limit
	burst   int
	byKey   map[string]*limiterEntry
	hits    uint64
	now     func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter from cfg.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	l := &RateLimiter{now: time.Now}
	l.Update(cfg)
	return l
}

// Update replaces the limiter settings. Existing buckets are dropped when
// the rate or burst changes.
func (l *RateLimiter) Update(cfg config.RateLimitConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()

	enabled := cfg.Enabled && cfg.RPS > 0 && cfg.Burst > 0
	limit := rate.Limit(cfg.RPS)
	if limit != l.limit || cfg.Burst != l.burst || l.byKey == nil {
		l.byKey = make(map[string]*limiterEntry)
	}
	l.enabled = enabled
	l.limit = limit
	l.burst = cfg.Burst
}

// Enabled reports whether requests are being limited.
func (l *RateLimiter) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Allow reports whether one request from key may proceed.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || key == "" {
		return true
	}

	now := l.now()
	e, ok := l.byKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}

	return allowed
}

// Middleware rejects requests over the client's budget with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", "1")
			WriteError(w, r, domain.ErrRateLimit("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by remote host.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
