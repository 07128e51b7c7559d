package alerts

import (
	"strconv"
	"sync"
	"time"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 5 * time.Minute
)

// GlobalBackoff is the process-wide Discord rate-limit window, shared across
// all webhook sends. While the window is active, sends fail fast instead of
// hitting the network. Access is mutex-guarded because sends run on multiple
// goroutines.
type GlobalBackoff struct {
	mu    sync.Mutex
	until time.Time

	now func() time.Time
}

// NewGlobalBackoff creates an inactive backoff window.
func NewGlobalBackoff() *GlobalBackoff {
	return &GlobalBackoff{now: time.Now}
}

// Active reports whether the window is in effect and, if so, how long until
// it expires. An expired window is cleared as a side effect.
func (b *GlobalBackoff) Active() (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.until.IsZero() {
		return false, 0
	}

	now := b.now()
	if now.Before(b.until) {
		return true, b.until.Sub(now)
	}

	b.until = time.Time{}

	return false, 0
}

// RecordRateLimit notes a 429 from Discord and extends the window. The
// Retry-After header is interpreted as seconds; missing or unparseable
// values fall back to the initial backoff, and the window is capped at
// maxBackoff. Concurrent records only ever extend the window, never shorten
// it. The applied backoff duration is returned.
func (b *GlobalBackoff) RecordRateLimit(retryAfterHeader string) time.Duration {
	backoff := initialBackoff

	if retryAfterHeader != "" {
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
			backoff = time.Duration(seconds) * time.Second
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	candidate := b.now().Add(backoff)
	if candidate.After(b.until) {
		b.until = candidate
	}

	return backoff
}
