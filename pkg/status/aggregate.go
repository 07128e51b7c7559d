// Package status reduces per-endpoint check results into category and
// overall summaries, and runs the polling cycle that feeds the incident
// tracker.
package status

import "github.com/statuswatch/statuswatch/pkg/models"

// severityRank orders statuses most-severe-first for worst-status-wins
// aggregation. Note that unknown outranks operational here even though the
// incident tracker treats unknown as indeterminate and never opens or
// resolves incidents on it.
var severityRank = map[models.ServiceStatus]int{
	models.StatusMajor:       4,
	models.StatusDegraded:    3,
	models.StatusPartial:     2,
	models.StatusUnknown:     1,
	models.StatusOperational: 0,
}

// WorstStatus returns the most severe status among the results. An empty
// input aggregates to operational.
func WorstStatus(results []models.ServiceResult) models.ServiceStatus {
	worst := models.StatusOperational

	for _, r := range results {
		if severityRank[r.Status] > severityRank[worst] {
			worst = r.Status
		}
	}

	return worst
}
