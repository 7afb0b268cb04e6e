package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig tunes the per-client token bucket. The broker fronts
// credential exchange, so the limiter keys on the dialing address only;
// forwarded headers are spoofable and never consulted here (the router's
// RealIP middleware normalizes RemoteAddr behind trusted proxies).
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Buckets idle long enough to refill completely are evicted.
const bucketIdleEviction = 10 * time.Minute

type clientBucket struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// bucketPool holds one token bucket per client address.
type bucketPool struct {
	mu      sync.Mutex
	cfg     RateLimitConfig
	buckets map[string]*clientBucket
}

func (p *bucketPool) get(addr string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cb, ok := p.buckets[addr]; ok {
		cb.lastSeen = time.Now()
		return cb.bucket
	}
	cb := &clientBucket{
		bucket:   rate.NewLimiter(rate.Limit(p.cfg.RequestsPerSecond), p.cfg.Burst),
		lastSeen: time.Now(),
	}
	p.buckets[addr] = cb
	return cb.bucket
}

func (p *bucketPool) evictIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for addr, cb := range p.buckets {
		if time.Since(cb.lastSeen) > bucketIdleEviction {
			delete(p.buckets, addr)
		}
	}
}

// RateLimiter enforces a per-client rate limit across the whole surface.
// Rejections answer 429 in the same JSON error shape the API handlers use.
func RateLimiter(cfg RateLimitConfig) func(http.Handler) http.Handler {
	pool := &bucketPool{cfg: cfg, buckets: make(map[string]*clientBucket)}
	go func() {
		for range time.Tick(bucketIdleEviction / 2) {
			pool.evictIdle()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bucket := pool.get(clientAddr(r))
			if !bucket.Allow() {
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"code":    http.StatusTooManyRequests,
					"message": "request rate exceeded",
				})
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(bucket.Tokens())))
			next.ServeHTTP(w, r)
		})
	}
}

// clientAddr strips the port from RemoteAddr.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
