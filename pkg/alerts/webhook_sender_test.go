package alerts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives both the sender's sleeps and the backoff window so a
// slept-through rate limit actually expires.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) {
	c.now = c.now.Add(d)
}

func newClockedSender() (*WebhookSender, *GlobalBackoff, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}

	backoff := NewGlobalBackoff()
	backoff.now = clock.Now

	sender := NewWebhookSender(backoff)
	sender.sleep = clock.Sleep

	return sender, backoff, clock
}

func testPayload() WebhookPayload {
	return WebhookPayload{
		Embeds:   []DiscordEmbed{BuildIncidentEmbed(TestIncident())},
		Username: "StatusWatch",
	}
}

func TestSendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender, _, _ := newClockedSender()

	result := sender.Send(context.Background(), srv.URL, testPayload())

	assert.True(t, result.Success)
	assert.NoError(t, result.Err)
}

func TestSendRetriesAfterRateLimit(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender, backoff, _ := newClockedSender()

	result := sender.Send(context.Background(), srv.URL, testPayload())

	assert.True(t, result.Success)
	assert.Equal(t, int32(2), hits.Load())

	// The slept-through window is spent.
	active, _ := backoff.Active()
	assert.False(t, active)
}

func TestSendFailsFastDuringBackoffWindow(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender, backoff, _ := newClockedSender()
	backoff.RecordRateLimit("60")

	result := sender.Send(context.Background(), srv.URL, testPayload())

	assert.False(t, result.Success)
	assert.True(t, result.RateLimited)
	assert.ErrorIs(t, result.Err, ErrRateLimited)
	assert.Zero(t, hits.Load(), "no request should reach the network")
}

func TestSendGivesUpWhenAlwaysRateLimited(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sender, _, _ := newClockedSender()

	result := sender.Send(context.Background(), srv.URL, testPayload())

	assert.False(t, result.Success)
	assert.True(t, result.RateLimited)
	assert.Equal(t, int32(maxSendRetries+1), hits.Load())
}

func TestSendTerminalStatus(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid payload"}`))
	}))
	defer srv.Close()

	sender, _, _ := newClockedSender()

	result := sender.Send(context.Background(), srv.URL, testPayload())

	assert.False(t, result.Success)
	assert.False(t, result.RateLimited)
	assert.ErrorIs(t, result.Err, ErrWebhookStatus)
	assert.Contains(t, result.Err.Error(), "invalid payload")

	// 4xx other than 429 never retries.
	assert.Equal(t, int32(1), hits.Load())
}

func TestSendNetworkErrorRetries(t *testing.T) {
	sender, _, clock := newClockedSender()
	start := clock.now

	result := sender.Send(context.Background(), "http://127.0.0.1:1/api/webhooks/1/x", testPayload())

	assert.False(t, result.Success)
	require.Error(t, result.Err)

	// Exponential backoff between the four attempts: 1s + 2s + 4s.
	assert.Equal(t, 7*time.Second, clock.now.Sub(start))
}
