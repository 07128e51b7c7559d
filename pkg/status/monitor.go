package status

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/statuswatch/statuswatch/pkg/checker"
	"github.com/statuswatch/statuswatch/pkg/models"
)

// Monitor runs full check cycles over the configured categories. It owns the
// last-known-status map used for transition detection: the map is updated in
// a single pass after all probes complete, and whole cycles are serialized,
// so each service's entry changes exactly once per cycle.
type Monitor struct {
	mu         sync.Mutex
	categories []models.ServiceCategory
	runner     *checker.Runner
	tracker    Tracker
	lastKnown  map[string]models.ServiceStatus

	subMu       sync.Mutex
	subscribers map[chan models.StatusSummary]struct{}
}

// NewMonitor creates a monitor. The tracker may be nil, in which case
// transitions are detected but not recorded.
func NewMonitor(categories []models.ServiceCategory, runner *checker.Runner, tracker Tracker) *Monitor {
	return &Monitor{
		categories:  categories,
		runner:      runner,
		tracker:     tracker,
		lastKnown:   make(map[string]models.ServiceStatus),
		subscribers: make(map[chan models.StatusSummary]struct{}),
	}
}

// CheckAll probes every configured endpoint, aggregates the results, and
// feeds each service's transition to the tracker in stable input order.
// Tracker failures are logged; they never fail the cycle.
func (m *Monitor) CheckAll(ctx context.Context) *models.StatusSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		endpoints  []models.ServiceEndpoint
		catIndexes []int
	)

	for ci, cat := range m.categories {
		for _, svc := range cat.Services {
			endpoints = append(endpoints, svc)
			catIndexes = append(catIndexes, ci)
		}
	}

	results := m.runner.Run(ctx, endpoints)

	categoryResults := make([]models.CategoryResult, len(m.categories))
	for ci, cat := range m.categories {
		categoryResults[ci] = models.CategoryResult{
			ID:            cat.ID,
			Name:          cat.Name,
			Icon:          cat.Icon,
			Color:         cat.Color,
			OverallStatus: models.StatusOperational,
			Services:      make([]models.ServiceResult, 0, len(cat.Services)),
		}
	}

	for i, result := range results {
		categoryResults[catIndexes[i]].Services = append(categoryResults[catIndexes[i]].Services, result)

		previous, seen := m.lastKnown[result.ID]
		if !seen {
			previous = models.StatusUnknown
		}

		// A first sighting (previous unknown) never opens an incident; the
		// tracker additionally ignores unknown current statuses.
		if previous != models.StatusUnknown && previous != result.Status && m.tracker != nil {
			if _, err := m.tracker.Track(ctx, result.ID, result.Name, previous, result.Status); err != nil {
				log.Printf("status: failed to track transition for %s: %v", result.ID, err)
			}
		}

		m.lastKnown[result.ID] = result.Status
	}

	operational := 0

	for ci := range categoryResults {
		categoryResults[ci].OverallStatus = WorstStatus(categoryResults[ci].Services)
	}

	for _, r := range results {
		if r.Status == models.StatusOperational {
			operational++
		}
	}

	summary := &models.StatusSummary{
		Overall:          WorstStatus(results),
		Categories:       categoryResults,
		LastChecked:      time.Now().UTC(),
		TotalServices:    len(results),
		OperationalCount: operational,
	}

	m.broadcast(*summary)

	return summary
}

// Run drives periodic check cycles until the context is cancelled. The first
// cycle starts immediately.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.CheckAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// Subscribe registers a consumer of freshly computed summaries. Slow
// consumers miss updates rather than blocking the cycle. The returned
// function cancels the subscription.
func (m *Monitor) Subscribe() (<-chan models.StatusSummary, func()) {
	ch := make(chan models.StatusSummary, 1)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()

		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
	}

	return ch, cancel
}

func (m *Monitor) broadcast(summary models.StatusSummary) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for ch := range m.subscribers {
		select {
		case ch <- summary:
		default:
		}
	}
}
