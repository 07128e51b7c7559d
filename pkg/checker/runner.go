package checker

import (
	"context"
	"sync"

	"github.com/statuswatch/statuswatch/pkg/models"
)

// DefaultConcurrency is the probe worker-pool size used when none is
// configured.
const DefaultConcurrency = 4

// Runner executes endpoint probes through a fixed-size worker pool. Results
// map back to their endpoint by index regardless of completion order, and a
// failing probe never affects its siblings (the Checker contract encodes all
// failures in the result).
type Runner struct {
	checker     Checker
	concurrency int
}

// NewRunner creates a runner over the given checker. A non-positive
// concurrency falls back to DefaultConcurrency.
func NewRunner(checker Checker, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Runner{
		checker:     checker,
		concurrency: concurrency,
	}
}

type indexedEndpoint struct {
	idx      int
	endpoint models.ServiceEndpoint
}

// Run probes every endpoint and returns results where results[i] corresponds
// to endpoints[i]. At most the configured number of probes are in flight at
// once.
func (r *Runner) Run(ctx context.Context, endpoints []models.ServiceEndpoint) []models.ServiceResult {
	results := make([]models.ServiceResult, len(endpoints))
	if len(endpoints) == 0 {
		return results
	}

	tasks := make(chan indexedEndpoint)

	workers := r.concurrency
	if workers > len(endpoints) {
		workers = len(endpoints)
	}

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for task := range tasks {
				results[task.idx] = r.checker.Check(ctx, task.endpoint)
			}
		}()
	}

	for i, endpoint := range endpoints {
		tasks <- indexedEndpoint{idx: i, endpoint: endpoint}
	}

	close(tasks)
	wg.Wait()

	return results
}
