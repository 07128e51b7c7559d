// Package models holds the shared data model for status checks, incidents,
// and webhook registrations. JSON tags are camelCase because these structs
// are served directly on the HTTP API.
package models

import "time"

// ServiceStatus is the severity-ordered health classification of a service.
type ServiceStatus string

const (
	StatusOperational ServiceStatus = "operational"
	StatusDegraded    ServiceStatus = "degraded"
	StatusPartial     ServiceStatus = "partial"
	StatusMajor       ServiceStatus = "major"
	StatusUnknown     ServiceStatus = "unknown"
)

// ServiceEndpoint is one monitored HTTP URL with its validation policy.
// Identity is ID; it must be unique across the configured set.
type ServiceEndpoint struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	URL            string `json:"url"`
	Description    string `json:"description,omitempty"`
	Method         string `json:"method,omitempty"`         // defaults to GET
	ExpectedStatus int    `json:"expectedStatus,omitempty"` // defaults to 200
	AcceptRange    bool   `json:"acceptRange,omitempty"`    // accept any code in [200,400)

	// Validator, when set, classifies the response body instead of the
	// expected-status policy.
	Validator ResponseValidator `json:"-"`
}

// ResponseValidator inspects a response and decides whether the service is
// behaving. A false return or an error both classify the service as degraded.
type ResponseValidator interface {
	Validate(statusCode int, body []byte) (bool, error)
}

// ServiceCategory groups endpoints for presentation and aggregation.
type ServiceCategory struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Icon     string            `json:"icon"`
	Color    string            `json:"color"`
	Services []ServiceEndpoint `json:"services"`
}

// ServiceResult is the outcome of a single endpoint check. It is ephemeral
// and recomputed on every polling cycle.
type ServiceResult struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Status       ServiceStatus `json:"status"`
	ResponseTime *int64        `json:"responseTime"` // milliseconds, nil on total failure
	StatusCode   *int          `json:"statusCode"`   // nil when no response was seen
	CheckedAt    time.Time     `json:"checkedAt"`
	Error        string        `json:"error,omitempty"`
}

// CategoryResult is the per-category reduction of service results.
type CategoryResult struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Icon          string          `json:"icon"`
	Color         string          `json:"color"`
	OverallStatus ServiceStatus   `json:"overallStatus"`
	Services      []ServiceResult `json:"services"`
}

// StatusSummary is the top-level artifact served to clients. Fully derived,
// never persisted.
type StatusSummary struct {
	Overall          ServiceStatus    `json:"overall"`
	Categories       []CategoryResult `json:"categories"`
	LastChecked      time.Time        `json:"lastChecked"`
	TotalServices    int              `json:"totalServices"`
	OperationalCount int              `json:"operationalCount"`
}

// MillisPtr is a convenience for building ServiceResult.ResponseTime values.
func MillisPtr(ms int64) *int64 { return &ms }
