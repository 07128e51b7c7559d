// Package incidents detects status transitions, maintains the bounded
// incident history, and triggers notification fan-out on every lifecycle
// change.
package incidents

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/statuswatch/statuswatch/pkg/models"
)

const (
	maxIncidents      = 200
	resolvedRetention = 30 * 24 * time.Hour
)

// Tracker owns all incident mutation logic. Every logical operation is one
// load → mutate → save critical section guarded by the mutex, so at most one
// open incident can ever exist per service.
type Tracker struct {
	mu       sync.Mutex
	store    Store
	notifier Notifier

	now func() time.Time
}

// NewTracker creates a tracker over the given store. The notifier may be
// nil, in which case transitions are recorded without fan-out.
func NewTracker(store Store, notifier Notifier) *Tracker {
	return &Tracker{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// Track applies one observed transition for a service. It returns the
// incident that was opened, updated, or resolved, or nil when the transition
// is a no-op. Unknown current statuses are indeterminate and never open or
// resolve incidents.
func (t *Tracker) Track(ctx context.Context, serviceID, serviceName string, previous, current models.ServiceStatus) (*models.Incident, error) {
	if previous == current || current == models.StatusUnknown {
		return nil, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	list, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load incidents: %w", err)
	}

	now := t.now().UTC()

	for i := range list {
		if list[i].ServiceID != serviceID || list[i].Resolved() {
			continue
		}

		if current == models.StatusOperational {
			resolved := now
			list[i].ResolvedAt = &resolved
		} else {
			if list[i].Status == current {
				// Still failing with the same status: nothing to record
				// and nothing worth re-alerting.
				incident := list[i]
				return &incident, nil
			}

			list[i].Status = current
		}

		incident := list[i]

		list = applyRetention(list, now)

		if err := t.store.Save(ctx, list); err != nil {
			return nil, fmt.Errorf("failed to save incidents: %w", err)
		}

		t.dispatch(ctx, &incident)

		return &incident, nil
	}

	if current == models.StatusOperational {
		return nil, nil
	}

	incident := models.Incident{
		ID:             models.NewID(now),
		ServiceID:      serviceID,
		ServiceName:    serviceName,
		StartedAt:      now,
		PreviousStatus: previous,
		Status:         current,
		Impact:         impactLevel(previous, current),
		Title:          incidentTitle(serviceName, current),
		AutoDetected:   true,
	}

	list = append([]models.Incident{incident}, list...)
	list = applyRetention(list, now)

	if err := t.store.Save(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to save incidents: %w", err)
	}

	t.dispatch(ctx, &incident)

	return &incident, nil
}

// AddManual records an operator-created incident. Manual incidents do not go
// through notification fan-out.
func (t *Tracker) AddManual(ctx context.Context, serviceID, serviceName, title, description string, impact models.Impact) (*models.Incident, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	list, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load incidents: %w", err)
	}

	now := t.now().UTC()

	incident := models.Incident{
		ID:             models.NewID(now),
		ServiceID:      serviceID,
		ServiceName:    serviceName,
		StartedAt:      now,
		PreviousStatus: models.StatusOperational,
		Status:         models.StatusDegraded,
		Impact:         impact,
		Title:          title,
		Description:    description,
		AutoDetected:   false,
	}

	list = append([]models.Incident{incident}, list...)
	list = applyRetention(list, now)

	if err := t.store.Save(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to save incidents: %w", err)
	}

	return &incident, nil
}

// Resolve closes an incident by ID regardless of probe state.
func (t *Tracker) Resolve(ctx context.Context, incidentID string) (*models.Incident, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	list, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load incidents: %w", err)
	}

	now := t.now().UTC()

	for i := range list {
		if list[i].ID != incidentID {
			continue
		}

		if list[i].Resolved() {
			return nil, ErrAlreadyResolved
		}

		resolved := now
		list[i].ResolvedAt = &resolved

		incident := list[i]

		list = applyRetention(list, now)

		if err := t.store.Save(ctx, list); err != nil {
			return nil, fmt.Errorf("failed to save incidents: %w", err)
		}

		return &incident, nil
	}

	return nil, ErrIncidentNotFound
}

// GetRecent returns the most recent incidents, newest first, excluding
// resolved incidents past the retention window. A non-positive limit
// defaults to 10.
func (t *Tracker) GetRecent(ctx context.Context, limit int) ([]models.Incident, error) {
	if limit <= 0 {
		limit = 10
	}

	list, err := t.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// GetAll returns every retained incident, newest first.
func (t *Tracker) GetAll(ctx context.Context) ([]models.Incident, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	list, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load incidents: %w", err)
	}

	return applyRetention(list, t.now().UTC()), nil
}

func (t *Tracker) dispatch(ctx context.Context, incident *models.Incident) {
	if t.notifier == nil {
		return
	}

	if err := t.notifier.Dispatch(ctx, incident); err != nil {
		log.Printf("incidents: notification dispatch for %s failed: %v", incident.ID, err)
	}
}

// applyRetention drops resolved incidents older than the retention window
// and caps the list at maxIncidents, newest first. Open incidents are never
// dropped by age.
func applyRetention(list []models.Incident, now time.Time) []models.Incident {
	kept := make([]models.Incident, 0, len(list))

	for _, incident := range list {
		if incident.Resolved() && now.Sub(*incident.ResolvedAt) >= resolvedRetention {
			continue
		}

		kept = append(kept, incident)
	}

	if len(kept) > maxIncidents {
		kept = kept[:maxIncidents]
	}

	return kept
}

func impactLevel(previous, current models.ServiceStatus) models.Impact {
	if previous == models.StatusOperational &&
		(current == models.StatusMajor || current == models.StatusPartial) {
		return models.ImpactCritical
	}

	if previous == models.StatusOperational && current == models.StatusDegraded {
		return models.ImpactMajor
	}

	return models.ImpactMinor
}

func incidentTitle(serviceName string, current models.ServiceStatus) string {
	if current == models.StatusDegraded {
		return serviceName + " Degraded"
	}

	return serviceName + " Experiencing Issues"
}
