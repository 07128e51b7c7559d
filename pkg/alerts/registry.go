package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/statuswatch/statuswatch/pkg/kv"
	"github.com/statuswatch/statuswatch/pkg/models"
)

const (
	// MaxWebhooks bounds the registry; saves silently truncate to the
	// newest entries.
	MaxWebhooks = 10

	webhooksKey = "statuswatch:webhooks"
)

// Registry manages the stored Discord webhooks through the key-value
// collaborator. Removal is a soft delete (Active=false) so test history is
// preserved. Each logical operation is one load → mutate → save critical
// section.
type Registry struct {
	mu  sync.Mutex
	kv  kv.KV
	now func() time.Time
}

// NewRegistry creates a webhook registry over the given KV backend.
func NewRegistry(backend kv.KV) *Registry {
	return &Registry{
		kv:  backend,
		now: time.Now,
	}
}

// IsValidDiscordWebhook reports whether raw looks like a Discord webhook
// URL: discord.com (or a subdomain) with a path under /api/webhooks/.
func IsValidDiscordWebhook(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	host := u.Hostname()

	return (host == "discord.com" || strings.HasSuffix(host, ".discord.com")) &&
		strings.HasPrefix(u.Path, "/api/webhooks/")
}

// Add registers a new webhook. The URL must be Discord-shaped; an empty name
// falls back to "Discord Webhook". When the registry is full the oldest
// entry is dropped on save.
func (r *Registry) Add(ctx context.Context, rawURL, name string) (*models.StoredWebhook, error) {
	if !IsValidDiscordWebhook(rawURL) {
		return nil, ErrInvalidWebhookURL
	}

	if name == "" {
		name = "Discord Webhook"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hooks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	webhook := models.StoredWebhook{
		ID:        models.NewID(r.now()),
		URL:       rawURL,
		Name:      name,
		CreatedAt: r.now().UTC(),
		Active:    true,
	}

	hooks = append([]models.StoredWebhook{webhook}, hooks...)

	if err := r.save(ctx, hooks); err != nil {
		return nil, err
	}

	return &webhook, nil
}

// ListActive returns the webhooks that have not been soft-deleted.
func (r *Registry) ListActive(ctx context.Context) ([]models.StoredWebhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hooks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]models.StoredWebhook, 0, len(hooks))

	for _, w := range hooks {
		if w.Active {
			active = append(active, w)
		}
	}

	return active, nil
}

// Get returns the webhook with the given ID, active or not.
func (r *Registry) Get(ctx context.Context, id string) (*models.StoredWebhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hooks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range hooks {
		if hooks[i].ID == id {
			return &hooks[i], nil
		}
	}

	return nil, ErrWebhookNotFound
}

// Remove soft-deletes the webhook with the given ID.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hooks, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i := range hooks {
		if hooks[i].ID == id {
			hooks[i].Active = false

			return r.save(ctx, hooks)
		}
	}

	return ErrWebhookNotFound
}

// RecordTest stores the outcome of a manual webhook test.
func (r *Registry) RecordTest(ctx context.Context, id string, success bool) (*models.StoredWebhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hooks, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range hooks {
		if hooks[i].ID == id {
			tested := r.now().UTC()
			hooks[i].LastTestedAt = &tested
			hooks[i].LastTestSuccess = &success

			if err := r.save(ctx, hooks); err != nil {
				return nil, err
			}

			return &hooks[i], nil
		}
	}

	return nil, ErrWebhookNotFound
}

func (r *Registry) load(ctx context.Context) ([]models.StoredWebhook, error) {
	raw, ok, err := r.kv.Get(ctx, webhooksKey)
	if err != nil {
		// Persistence trouble degrades to an empty registry rather than
		// failing the caller.
		log.Printf("alerts: failed to load webhooks: %v", err)
		return []models.StoredWebhook{}, nil
	}

	if !ok {
		return []models.StoredWebhook{}, nil
	}

	var hooks []models.StoredWebhook
	if err := json.Unmarshal([]byte(raw), &hooks); err != nil {
		return nil, fmt.Errorf("failed to decode webhook list: %w", err)
	}

	return hooks, nil
}

func (r *Registry) save(ctx context.Context, hooks []models.StoredWebhook) error {
	if len(hooks) > MaxWebhooks {
		hooks = hooks[:MaxWebhooks]
	}

	data, err := json.Marshal(hooks)
	if err != nil {
		return fmt.Errorf("failed to encode webhook list: %w", err)
	}

	if err := r.kv.Put(ctx, webhooksKey, string(data)); err != nil {
		return fmt.Errorf("failed to save webhook list: %w", err)
	}

	return nil
}
