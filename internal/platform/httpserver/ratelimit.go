package httpserver

import (
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// tenantLimiter hands out one token bucket per tenant. Buckets idle for longer
// than the cache expiry are dropped and start full again.
type tenantLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *cache.Cache
}

// newTenantLimiter allows perMinute requests per tenant per minute. A
// non-positive value disables limiting.
func newTenantLimiter(perMinute int) *tenantLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &tenantLimiter{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		buckets: cache.New(30*time.Minute, 10*time.Minute),
	}
}

func (l *tenantLimiter) Allow(tenantID string) bool {
	if l == nil {
		return true
	}
	return l.bucket(tenantID).Allow()
}

func (l *tenantLimiter) bucket(tenantID string) *rate.Limiter {
	if found, ok := l.buckets.Get(tenantID); ok {
		l.buckets.SetDefault(tenantID, found)
		return found.(*rate.Limiter)
	}
	fresh := rate.NewLimiter(l.limit, l.burst)
	if err := l.buckets.Add(tenantID, fresh, cache.DefaultExpiration); err != nil {
		// Lost the race to another request for the same tenant.
		if found, ok := l.buckets.Get(tenantID); ok {
			return found.(*rate.Limiter)
		}
	}
	return fresh
}
