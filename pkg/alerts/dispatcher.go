package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/statuswatch/statuswatch/pkg/models"
)

// Dispatcher fans incident events out to every active webhook. Deliveries
// run concurrently; one webhook's failure never blocks the others, and all
// deliveries settle before Dispatch returns.
type Dispatcher struct {
	registry *Registry
	sender   AlertSender
	username string
}

// NewDispatcher creates a dispatcher posting as the given username.
func NewDispatcher(registry *Registry, sender AlertSender, username string) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		sender:   sender,
		username: username,
	}
}

// Dispatch sends the incident embed to all active webhooks. Failures are
// logged per webhook; the joined error is informational and callers treat it
// as best-effort.
func (d *Dispatcher) Dispatch(ctx context.Context, incident *models.Incident) error {
	hooks, err := d.registry.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list webhooks: %w", err)
	}

	if len(hooks) == 0 {
		return nil
	}

	payload := WebhookPayload{
		Content:  nil,
		Embeds:   []DiscordEmbed{BuildIncidentEmbed(incident)},
		Username: d.username,
	}

	var wg sync.WaitGroup

	sendErrs := make([]error, len(hooks))

	for i, hook := range hooks {
		wg.Add(1)

		go func(i int, hook models.StoredWebhook) {
			defer wg.Done()

			result := d.sender.Send(ctx, hook.URL, payload)
			if !result.Success {
				log.Printf("alerts: delivery to webhook %s failed: %v", hook.ID, result.Err)
				sendErrs[i] = fmt.Errorf("webhook %s: %w", hook.ID, result.Err)
			}
		}(i, hook)
	}

	wg.Wait()

	return errors.Join(sendErrs...)
}
