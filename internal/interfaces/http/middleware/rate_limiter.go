package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedIPs bounds the per-IP limiter map; above this the sweep
// evicts half the entries.
const maxTrackedIPs = 10000

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rps      rate.Limit
	burst    int
	sweep    time.Duration
}

// NewIPRateLimiter creates a limiter allowing rps requests per second
// with the given burst per IP, and starts the background sweep that
// bounds the map.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	limiter := &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		sweep:    5 * time.Minute,
	}

	go limiter.sweepRoutine()

	return limiter
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(i.rps, i.burst)
		i.limiters[ip] = limiter
	}

	return limiter
}

// sweepRoutine periodically drops half the tracked IPs once the map
// exceeds maxTrackedIPs. Evicted clients simply start a fresh bucket.
func (i *IPRateLimiter) sweepRoutine() {
	ticker := time.NewTicker(i.sweep)
	defer ticker.Stop()

	for range ticker.C {
		i.mu.Lock()
		if len(i.limiters) > maxTrackedIPs {
			kept := make(map[string]*rate.Limiter, len(i.limiters)/2)
			for ip, limiter := range i.limiters {
				if len(kept) >= len(i.limiters)/2 {
					break
				}
				kept[ip] = limiter
			}
			i.limiters = kept
		}
		i.mu.Unlock()
	}
}

// RateLimit rejects requests exceeding the per-IP budget with 429.
// The client IP is taken from X-Forwarded-For, then X-Real-IP, then
// the connection address.
func RateLimit(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.Header.Get("X-Real-IP")
			}
			if ip == "" {
				ip = r.RemoteAddr
			}

			if !limiter.getLimiter(ip).Allow() {
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
