package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGlobalBackoff(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	newBackoff := func(at *time.Time) *GlobalBackoff {
		b := NewGlobalBackoff()
		b.now = func() time.Time { return *at }

		return b
	}

	t.Run("inactive by default", func(t *testing.T) {
		now := base
		b := newBackoff(&now)

		active, _ := b.Active()
		assert.False(t, active)
	})

	t.Run("default backoff when header is missing", func(t *testing.T) {
		now := base
		b := newBackoff(&now)

		assert.Equal(t, initialBackoff, b.RecordRateLimit(""))

		active, wait := b.Active()
		assert.True(t, active)
		assert.Equal(t, initialBackoff, wait)
	})

	t.Run("default backoff when header is junk", func(t *testing.T) {
		now := base
		b := newBackoff(&now)

		assert.Equal(t, initialBackoff, b.RecordRateLimit("later"))
	})

	t.Run("honors Retry-After seconds", func(t *testing.T) {
		now := base
		b := newBackoff(&now)

		assert.Equal(t, 42*time.Second, b.RecordRateLimit("42"))
	})

	t.Run("caps at five minutes", func(t *testing.T) {
		now := base
		b := newBackoff(&now)

		assert.Equal(t, maxBackoff, b.RecordRateLimit("3600"))
	})

	t.Run("window only ever extends", func(t *testing.T) {
		now := base
		b := newBackoff(&now)

		b.RecordRateLimit("60")
		b.RecordRateLimit("5")

		_, wait := b.Active()
		assert.Equal(t, 60*time.Second, wait)
	})

	t.Run("expires and clears", func(t *testing.T) {
		now := base
		b := newBackoff(&now)

		b.RecordRateLimit("10")

		now = base.Add(11 * time.Second)

		active, wait := b.Active()
		assert.False(t, active)
		assert.Zero(t, wait)
	})
}
