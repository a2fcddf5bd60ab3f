package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ben-daghir/hercap/pkg/errors"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo is reported in X-RateLimit-* headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// KeyFunc extracts the limiter key; the client IP when nil.
	KeyFunc   func(r *http.Request) string
	SkipPaths []string
	// IdleTTL is how long an unused client limiter is kept.
	IdleTTL time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		Burst:             100,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		IdleTTL:           5 * time.Minute,
	}
}

// ClientIP prefers proxy headers, then the connection address.
func ClientIP(r *http.Request) string {
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter holds one token bucket per key.  Interactive sessions send
// bursts of pointer input, so the burst is generous relative to the rate.
type KeyedLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*clientLimiter
	stop    chan struct{}
	once    sync.Once
}

// NewKeyedLimiter starts a sweeper that drops limiters idle for ttl.  Call
// Stop to end it.
func NewKeyedLimiter(rps float64, burst int, ttl time.Duration) *KeyedLimiter {
	if burst <= 0 {
		burst = 1
	}
	l := &KeyedLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
		stop:    make(chan struct{}),
	}
	if ttl > 0 {
		go l.sweep()
	}
	return l
}

func (l *KeyedLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()
	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	allowed := c.limiter.AllowN(now, 1)
	remaining := int(c.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	reset := now
	if l.limit > 0 {
		reset = now.Add(time.Duration(float64(time.Second) / float64(l.limit)))
	}
	return allowed, RateLimitInfo{Limit: l.burst, Remaining: remaining, ResetAt: reset}
}

func (l *KeyedLimiter) sweep() {
	ticker := time.NewTicker(l.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evict(l.now().Add(-l.ttl))
		}
	}
}

func (l *KeyedLimiter) evict(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, k)
		}
	}
}

// Len reports the number of tracked clients.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *KeyedLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// RateLimit rejects requests over the limit with 429 and a Retry-After
// header.
func RateLimit(limiter RateLimiter, cfg RateLimitConfig) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			allowed, info := limiter.Allow(keyFunc(r))
			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			retry := int(time.Until(info.ResetAt).Seconds())
			if retry < 1 {
				retry = 1
			}
			h.Set("Retry-After", strconv.Itoa(retry))
			h.Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			appErr := errors.RateLimit("rate limit exceeded")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    appErr.Code.String(),
				"message": appErr.Message,
			})
		})
	}
}

// RateLimitMiddleware adapts RateLimit for RouterConfig.
type RateLimitMiddleware struct {
	limiter *KeyedLimiter
	handler func(http.Handler) http.Handler
}

func NewRateLimitMiddleware(cfg RateLimitConfig) *RateLimitMiddleware {
	l := NewKeyedLimiter(cfg.RequestsPerSecond, cfg.Burst, cfg.IdleTTL)
	return &RateLimitMiddleware{limiter: l, handler: RateLimit(l, cfg)}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return m.handler(next)
}

// Stop ends the limiter's idle sweeper.
func (m *RateLimitMiddleware) Stop() { m.limiter.Stop() }

//Personal.AI order the ending
