package auth

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter keyed by client
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // interval duration
	capacity int           // max tokens
	now      func() time.Time
}

type bucket struct {
	tokens   int
	lastFill time.Time
}

// NewRateLimiter creates a new rate limiter. Idle buckets are swept until
// ctx is done.
func NewRateLimiter(ctx context.Context, rate int, interval time.Duration, capacity int) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		capacity: capacity,
		now:      time.Now,
	}

	go rl.cleanup(ctx)

	return rl
}

// Allow checks if a request from the given key is allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{
			tokens:   rl.capacity,
			lastFill: now,
		}
		rl.buckets[key] = b
	}

	// Refill whole intervals only, keeping the remainder for the next call
	if intervals := int(now.Sub(b.lastFill) / rl.interval); intervals > 0 {
		b.tokens = min(b.tokens+intervals*rl.rate, rl.capacity)
		b.lastFill = b.lastFill.Add(time.Duration(intervals) * rl.interval)
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// cleanup removes old buckets periodically
func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep(10 * time.Minute)
		}
	}
}

func (rl *RateLimiter) sweep(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastFill) > idle {
			delete(rl.buckets, key)
		}
	}
}

// ClientKey identifies the caller by the connection's remote IP. Behind a
// trusted reverse proxy, the last X-Forwarded-For hop is used instead: it is
// the address the proxy itself saw, while earlier hops are client supplied.
func ClientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			hops := strings.Split(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(hops[len(hops)-1])); ip != nil {
				return ip.String()
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
