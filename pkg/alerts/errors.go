package alerts

import "errors"

var (
	ErrInvalidWebhookURL = errors.New("invalid Discord webhook URL")
	ErrWebhookNotFound   = errors.New("webhook not found")
	ErrRateLimited       = errors.New("rate limited by Discord")
	ErrWebhookStatus     = errors.New("webhook returned non-success status")
	ErrSendFailed        = errors.New("failed to send webhook after retries")
)
