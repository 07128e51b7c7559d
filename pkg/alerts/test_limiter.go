package alerts

import (
	"context"
	"sync"
	"time"
)

const (
	maxTestsPerHour   = 5
	maxTestsPerMinute = 2
)

// TestLimiter throttles manual webhook tests per webhook ID over rolling
// one-hour and one-minute windows. It is independent of the global Discord
// backoff window.
type TestLimiter struct {
	mu  sync.Mutex
	log map[string][]time.Time

	now func() time.Time
}

// NewTestLimiter creates an empty limiter.
func NewTestLimiter() *TestLimiter {
	return &TestLimiter{
		log: make(map[string][]time.Time),
		now: time.Now,
	}
}

// CanTest decides whether a test of the given webhook is allowed right now.
// When it is, the attempt is recorded. When it is not, the returned duration
// says how long until the oldest entry in the violated window ages out.
func (l *TestLimiter) CanTest(webhookID string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	entries := withinWindow(l.log[webhookID], now, time.Hour)

	if len(entries) >= maxTestsPerHour {
		return false, time.Hour - now.Sub(entries[0])
	}

	lastMinute := withinWindow(entries, now, time.Minute)
	if len(lastMinute) >= maxTestsPerMinute {
		return false, time.Minute - now.Sub(lastMinute[0])
	}

	l.log[webhookID] = append(entries, now)

	return true, 0
}

// Run prunes stale entries periodically until ctx is cancelled.
func (l *TestLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

// Cleanup drops entries older than an hour and removes empty logs.
func (l *TestLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	for id, entries := range l.log {
		recent := withinWindow(entries, now, time.Hour)
		if len(recent) == 0 {
			delete(l.log, id)
		} else {
			l.log[id] = recent
		}
	}
}

func withinWindow(entries []time.Time, now time.Time, window time.Duration) []time.Time {
	recent := make([]time.Time, 0, len(entries))

	for _, e := range entries {
		if now.Sub(e) < window {
			recent = append(recent, e)
		}
	}

	return recent
}
