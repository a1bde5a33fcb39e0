// Package ratelimit throttles credential endpoints per client address.
package ratelimit

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config is the per-key rate and burst.
type Config struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

// DefaultConfig allows a burst of 5 attempts, then one every 12 seconds.
func DefaultConfig() Config {
	return Config{
		Rate:            rate.Limit(5.0 / 60.0),
		Burst:           5,
		CleanupInterval: 5 * time.Minute,
	}
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	config Config

	mu      sync.Mutex
	entries map[string]*entry

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New returns a Limiter and starts its background cleanup. Call Stop to
// end it.
func New(config Config) *Limiter {
	l := &Limiter{
		config:  config,
		entries: make(map[string]*entry),
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Stop ends the background cleanup. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Allow reports whether a request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.config.Rate, l.config.Burst)}
		l.entries[key] = e
	}
	e.lastAccess = time.Now()
	l.mu.Unlock()

	return e.limiter.Allow()
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// RetryAfter is the whole number of seconds until one more request is
// allowed, at least 1.
func (l *Limiter) RetryAfter() int {
	return max(1, int(math.Ceil(1.0/float64(l.config.Rate))))
}

// Middleware rejects requests over the limit with 429 and a JSON body.
// onReject, if set, is called for each rejection.
func (l *Limiter) Middleware(onReject func(r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r)
			if !l.Allow(key) {
				slog.Warn("rate limit exceeded", "client", key, "path", r.URL.Path)
				if onReject != nil {
					onReject(r)
				}
				w.Header().Set("Retry-After", strconv.Itoa(l.RetryAfter()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "too many requests, try again later"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the caller by remote IP, without the port.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

// cleanup drops keys idle for more than two cleanup intervals.
func (l *Limiter) cleanup(now time.Time) {
	ttl := l.config.CleanupInterval * 2

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if now.Sub(e.lastAccess) > ttl {
			delete(l.entries, key)
		}
	}
}
