package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const maxSendRetries = 3

// WebhookSender posts payloads to Discord webhooks with retry, exponential
// backoff on network errors, and fail-fast behavior while the global
// rate-limit window is active.
type WebhookSender struct {
	client  *http.Client
	backoff *GlobalBackoff

	sleep func(ctx context.Context, d time.Duration)
}

// NewWebhookSender creates a sender sharing the given global backoff window.
func NewWebhookSender(backoff *GlobalBackoff) *WebhookSender {
	return &WebhookSender{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoff: backoff,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Send delivers one payload to one webhook URL. Any 2xx (Discord answers
// 204) is success; 429 extends the global backoff window and retries; any
// other failure status is terminal. Network errors retry with exponential
// backoff capped at five minutes.
func (s *WebhookSender) Send(ctx context.Context, url string, payload WebhookPayload) SendResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return SendResult{Err: fmt.Errorf("failed to encode payload: %w", err)}
	}

	var lastErr error

	for attempt := 0; attempt <= maxSendRetries; attempt++ {
		if active, wait := s.backoff.Active(); active {
			return SendResult{
				RateLimited: true,
				Err:         fmt.Errorf("%w: backoff window active for %s", ErrRateLimited, wait.Round(100*time.Millisecond)),
			}
		}

		resp, err := s.post(ctx, url, body)
		if err != nil {
			lastErr = err

			if attempt < maxSendRetries {
				wait := initialBackoff << attempt
				if wait > maxBackoff {
					wait = maxBackoff
				}

				log.Printf("alerts: network error sending webhook (attempt %d/%d), retrying in %v: %v",
					attempt+1, maxSendRetries, wait, err)
				s.sleep(ctx, wait)

				continue
			}

			break
		}

		status := resp.StatusCode

		if status >= 200 && status < 300 {
			drain(resp)
			return SendResult{Success: true}
		}

		if status == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			drain(resp)

			wait := s.backoff.RecordRateLimit(retryAfter)

			if attempt < maxSendRetries {
				log.Printf("alerts: Discord rate limit hit (429), waiting %v before retry %d/%d",
					wait, attempt+1, maxSendRetries)
				s.sleep(ctx, wait)

				continue
			}

			return SendResult{
				RateLimited: true,
				Err:         fmt.Errorf("%w: gave up after %d retries", ErrRateLimited, maxSendRetries),
			}
		}

		// Terminal: Discord rejected the request for a non-rate-limit reason.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		drain(resp)

		return SendResult{
			Err: fmt.Errorf("%w: status=%d body=%s", ErrWebhookStatus, status, string(detail)),
		}
	}

	if lastErr == nil {
		lastErr = ErrSendFailed
	}

	return SendResult{Err: lastErr}
}

func (s *WebhookSender) post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return s.client.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if err := resp.Body.Close(); err != nil {
		log.Printf("alerts: failed to close response body: %v", err)
	}
}
