package models

import "time"

// Impact classifies how severe an incident is for consumers.
type Impact string

const (
	ImpactMinor    Impact = "minor"
	ImpactMajor    Impact = "major"
	ImpactCritical Impact = "critical"
)

// Incident is a tracked period during which one service was non-operational.
// At most one incident per service may have ResolvedAt unset.
type Incident struct {
	ID             string        `json:"id"`
	ServiceID      string        `json:"serviceId"`
	ServiceName    string        `json:"serviceName"`
	StartedAt      time.Time     `json:"startedAt"`
	ResolvedAt     *time.Time    `json:"resolvedAt,omitempty"`
	PreviousStatus ServiceStatus `json:"previousStatus"`
	Status         ServiceStatus `json:"status"`
	Impact         Impact        `json:"impact"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	AutoDetected   bool          `json:"autoDetected"`
}

// Resolved reports whether the incident has been closed.
func (i *Incident) Resolved() bool {
	return i.ResolvedAt != nil
}

// StoredWebhook is a registered Discord webhook target. Webhooks are
// soft-deleted (Active=false) so test history survives removal.
type StoredWebhook struct {
	ID              string     `json:"id"`
	URL             string     `json:"url"`
	Name            string     `json:"name"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastTestedAt    *time.Time `json:"lastTestedAt,omitempty"`
	LastTestSuccess *bool      `json:"lastTestSuccess,omitempty"`
	Active          bool       `json:"active"`
}
