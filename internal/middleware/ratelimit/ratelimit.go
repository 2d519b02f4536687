// Package ratelimit guards the credential endpoints. The limiter is an
// injected interface so the in-process implementation can be swapped for a
// distributed one without touching the middleware.
package ratelimit

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// Limiter answers whether a request identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// PerKey keeps one token bucket per client key in memory.
type PerKey struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewPerKey allows perMinute requests per key with an equal burst.
func NewPerKey(perMinute int) *PerKey {
	if perMinute < 1 {
		perMinute = 1
	}
	return &PerKey{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
	}
}

func (p *PerKey) Allow(key string) bool {
	p.mu.Lock()
	b, ok := p.buckets[key]
	if !ok {
		b = rate.NewLimiter(p.limit, p.burst)
		p.buckets[key] = b
	}
	p.mu.Unlock()
	return b.Allow()
}

// Middleware keys requests by client IP and rejects over-limit calls with 429.
func Middleware(l Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
