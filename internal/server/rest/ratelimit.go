package rest

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL     = 10 * time.Minute
	limiterSweepPeriod = time.Minute
)

// ipLimiter hands out a token-bucket limiter per client key. Idle buckets
// are swept on the request path, so the limiter needs no background
// goroutine and no teardown.
type ipLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	lastSweep time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		limiters:  make(map[string]*limiterEntry),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *ipLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= limiterSweepPeriod {
		for k, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.Allow()
}
