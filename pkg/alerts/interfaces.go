// Package alerts pkg/alerts/interfaces.go
package alerts

//go:generate mockgen -destination=mock_alerts.go -package=alerts github.com/statuswatch/statuswatch/pkg/alerts AlertSender

import "context"

// AlertSender delivers one payload to one webhook URL, applying retry and
// rate-limit policy. Failures are reported in the result, never panicked.
type AlertSender interface {
	Send(ctx context.Context, url string, payload WebhookPayload) SendResult
}

// SendResult describes the outcome of a single webhook delivery.
type SendResult struct {
	Success     bool
	RateLimited bool
	Err         error
}
