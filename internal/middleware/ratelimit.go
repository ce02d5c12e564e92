package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

type window struct {
	count   int
	started time.Time
}

// RateLimiter is a fixed-window per-IP request limiter. Counters reset when
// a new window starts; stale entries are swept once per window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
	}

	// Cleanup goroutine
	go func() {
		for {
			time.Sleep(period)
			rl.mu.Lock()
			for ip, w := range rl.clients {
				if time.Since(w.started) > period {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()

	return rl
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Key on the host only; RemoteAddr carries an ephemeral port
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !rl.allow(ip) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	wnd, exists := rl.clients[ip]
	if !exists || time.Since(wnd.started) > rl.period {
		rl.clients[ip] = &window{count: 1, started: time.Now()}
		return true
	}

	wnd.count++
	return wnd.count <= rl.limit
}
