// Package incidents pkg/incidents/interfaces.go
package incidents

//go:generate mockgen -destination=mock_incidents.go -package=incidents github.com/statuswatch/statuswatch/pkg/incidents Store,Notifier

import (
	"context"

	"github.com/statuswatch/statuswatch/pkg/models"
)

// Store holds the canonical incident list. The tracker always loads fresh,
// mutates in memory, and saves back; callers must not assume caching beyond
// one tracker call.
type Store interface {
	Load(ctx context.Context) ([]models.Incident, error)
	Save(ctx context.Context, incidents []models.Incident) error
}

// Notifier fans an incident event out to all registered alert targets.
// Delivery is best effort; a non-nil error is informational only and must
// never block incident recording.
type Notifier interface {
	Dispatch(ctx context.Context, incident *models.Incident) error
}
