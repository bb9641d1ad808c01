package api

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter pairs a token bucket with its last use, so idle clients can
// be swept.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter enforces a per-client request quota over a fixed window.
// Clients are keyed by remote IP.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	calls   int
	window  time.Duration
	done    chan struct{}
}

func newRateLimiter(calls int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		clients: make(map[string]*clientLimiter),
		calls:   calls,
		window:  window,
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// allow reports whether the client identified by key may proceed. The bucket
// refills at calls-per-window with a full window of burst.
func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.calls)/rl.window.Seconds()), rl.calls),
		}
		rl.clients[key] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

// sweep drops limiters for clients idle longer than two windows.
func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * rl.window)
			rl.mu.Lock()
			for key, cl := range rl.clients {
				if cl.lastSeen.Before(cutoff) {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// stop terminates the sweep goroutine.
func (rl *rateLimiter) stop() {
	close(rl.done)
}

// exemptFromRateLimit lists paths that bypass the limiter so probes and
// scrapes never starve.
func exemptFromRateLimit(path string) bool {
	return path == "/metrics" || path == "/health" || strings.HasPrefix(path, "/health/")
}

// clientKey identifies the caller by remote IP, ignoring the ephemeral port.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimitMiddleware rejects clients that exceed the configured quota.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if exemptFromRateLimit(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if !s.limiter.allow(clientKey(r)) {
			s.writeError(w, http.StatusTooManyRequests, fmt.Sprintf(
				"Rate limit exceeded. Maximum %d requests per %d seconds.",
				s.limiter.calls, int(s.limiter.window.Seconds())))
			return
		}
		next.ServeHTTP(w, r)
	})
}
