package guard

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiter keeps one token bucket per caller. A bucket refills MaxRequests
// tokens per Window.
type limiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	window    time.Duration
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLimiter(rl *RateLimit) *limiter {
	window, max := rl.Window, rl.MaxRequests
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}

	return &limiter{
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		window:  window,
		buckets: make(map[string]*bucket),
	}
}

// allow takes a token for key. When none is available it returns the wait
// until the next one.
func (l *limiter) allow(key string, now time.Time) (retryAfter time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	b, found := l.buckets[key]
	if !found {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now

	res := b.lim.ReserveN(now, 1)
	if !res.OK() {
		return l.window, false
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)

		return d, false
	}

	return 0, true
}

// sweep drops buckets idle for a full window; they would be full again anyway.
func (l *limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now

	for key, b := range l.buckets {
		if now.Sub(b.seen) >= l.window {
			delete(l.buckets, key)
		}
	}
}
