package alerts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswatch/statuswatch/pkg/kv"
)

const validHookURL = "https://discord.com/api/webhooks/123456/token-abc"

func TestIsValidDiscordWebhook(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"canonical", "https://discord.com/api/webhooks/1/t", true},
		{"subdomain", "https://ptb.discord.com/api/webhooks/1/t", true},
		{"wrong host", "https://example.com/api/webhooks/1/t", false},
		{"host suffix trick", "https://notdiscord.com/api/webhooks/1/t", false},
		{"wrong path", "https://discord.com/webhooks/1/t", false},
		{"not a url", "://nope", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidDiscordWebhook(tt.url))
		})
	}
}

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry(kv.NewMemoryStore())
	ctx := context.Background()

	hook, err := r.Add(ctx, validHookURL, "Ops Channel")
	require.NoError(t, err)

	assert.Equal(t, "Ops Channel", hook.Name)
	assert.Equal(t, validHookURL, hook.URL)
	assert.True(t, hook.Active)
	assert.NotEmpty(t, hook.ID)

	t.Run("empty name gets a default", func(t *testing.T) {
		hook, err := r.Add(ctx, validHookURL, "")
		require.NoError(t, err)
		assert.Equal(t, "Discord Webhook", hook.Name)
	})

	t.Run("rejects non-Discord urls", func(t *testing.T) {
		_, err := r.Add(ctx, "https://example.com/api/webhooks/1/t", "bad")
		assert.ErrorIs(t, err, ErrInvalidWebhookURL)
	})
}

func TestRegistryCapsAtMaxWebhooks(t *testing.T) {
	r := NewRegistry(kv.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < MaxWebhooks+3; i++ {
		_, err := r.Add(ctx, validHookURL, fmt.Sprintf("hook-%d", i))
		require.NoError(t, err)
	}

	hooks, err := r.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, hooks, MaxWebhooks)

	// Newest first; the oldest entries were dropped on save.
	assert.Equal(t, fmt.Sprintf("hook-%d", MaxWebhooks+2), hooks[0].Name)
	assert.Equal(t, "hook-3", hooks[MaxWebhooks-1].Name)
}

func TestRegistryRemoveIsSoftDelete(t *testing.T) {
	r := NewRegistry(kv.NewMemoryStore())
	ctx := context.Background()

	hook, err := r.Add(ctx, validHookURL, "Ops")
	require.NoError(t, err)

	require.NoError(t, r.Remove(ctx, hook.ID))

	active, err := r.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// The record itself survives.
	stored, err := r.Get(ctx, hook.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	assert.ErrorIs(t, r.Remove(ctx, "missing"), ErrWebhookNotFound)
}

func TestRegistryRecordTest(t *testing.T) {
	r := NewRegistry(kv.NewMemoryStore())
	ctx := context.Background()

	hook, err := r.Add(ctx, validHookURL, "Ops")
	require.NoError(t, err)

	updated, err := r.RecordTest(ctx, hook.ID, true)
	require.NoError(t, err)

	require.NotNil(t, updated.LastTestedAt)
	require.NotNil(t, updated.LastTestSuccess)
	assert.True(t, *updated.LastTestSuccess)

	updated, err = r.RecordTest(ctx, hook.ID, false)
	require.NoError(t, err)
	assert.False(t, *updated.LastTestSuccess)

	_, err = r.RecordTest(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrWebhookNotFound)
}

func TestRegistryGetMissing(t *testing.T) {
	r := NewRegistry(kv.NewMemoryStore())

	_, err := r.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrWebhookNotFound)
}
