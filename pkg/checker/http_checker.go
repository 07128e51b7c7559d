// Package checker implements the endpoint prober and the bounded-concurrency
// runner that drives it.
package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/statuswatch/statuswatch/pkg/models"
)

const (
	defaultTimeout = 15 * time.Second

	maxRetries  = 2
	baseBackoff = time.Second

	// 429 handling: default wait when Retry-After is missing or unparseable,
	// and the hard ceiling on how long we honor it.
	rateLimitDefaultWait = 5 * time.Second
	rateLimitMaxWait     = 30 * time.Second

	userAgent = "statuswatch/1.0 (status-checker)"
)

// HTTPChecker probes HTTP endpoints with retries, exponential backoff, and
// rate-limit-aware waits. Redirects are followed.
type HTTPChecker struct {
	client  *http.Client
	timeout time.Duration

	// sleep is swappable so tests do not pay real backoff delays.
	sleep func(ctx context.Context, d time.Duration)
}

// NewHTTPChecker creates a checker with the default 15s per-attempt timeout.
func NewHTTPChecker() *HTTPChecker {
	return &HTTPChecker{
		client:  &http.Client{},
		timeout: defaultTimeout,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Check probes one endpoint and produces exactly one result. All failure
// modes are encoded in the result; Check never fails to the caller.
func (h *HTTPChecker) Check(ctx context.Context, svc models.ServiceEndpoint) models.ServiceResult {
	var (
		lastError      string
		lastStatusCode *int
		lastElapsed    int64
	)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			h.sleep(ctx, baseBackoff<<(attempt-1))
		}

		resp, elapsed, err := h.doRequest(ctx, svc)
		lastElapsed = elapsed

		if err != nil {
			lastError = classifyRequestError(err)

			if attempt < maxRetries {
				continue
			}

			break
		}

		code := resp.StatusCode
		lastStatusCode = &code

		if code == http.StatusTooManyRequests {
			wait := retryAfterWait(resp.Header.Get("Retry-After"))
			drainBody(resp)

			log.Printf("checker: %s rate limited (429), waiting %v before next attempt", svc.ID, wait)
			h.sleep(ctx, wait)

			lastError = "Rate limited (429)"

			continue
		}

		if svc.Validator != nil {
			return h.validateResponse(svc, resp, elapsed)
		}

		drainBody(resp)

		if statusAccepted(svc, code) {
			return models.ServiceResult{
				ID:           svc.ID,
				Name:         svc.Name,
				Status:       models.StatusOperational,
				ResponseTime: models.MillisPtr(elapsed),
				StatusCode:   &code,
				CheckedAt:    time.Now().UTC(),
			}
		}

		if code >= http.StatusInternalServerError {
			lastError = fmt.Sprintf("HTTP %d", code)
			continue
		}

		// Unexpected but non-retryable status: degraded, no retry.
		return models.ServiceResult{
			ID:           svc.ID,
			Name:         svc.Name,
			Status:       models.StatusDegraded,
			ResponseTime: models.MillisPtr(elapsed),
			StatusCode:   &code,
			CheckedAt:    time.Now().UTC(),
		}
	}

	if lastElapsed == 0 {
		lastElapsed = h.timeout.Milliseconds()
	}

	return models.ServiceResult{
		ID:           svc.ID,
		Name:         svc.Name,
		Status:       models.StatusMajor,
		ResponseTime: models.MillisPtr(lastElapsed),
		StatusCode:   lastStatusCode,
		CheckedAt:    time.Now().UTC(),
		Error:        lastError,
	}
}

// doRequest issues one attempt, bounded by its own timeout so a hung attempt
// never cancels sibling probes or later retries.
func (h *HTTPChecker) doRequest(ctx context.Context, svc models.ServiceEndpoint) (*http.Response, int64, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, h.timeout)

	method := svc.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, svc.URL, http.NoBody)
	if err != nil {
		cancel()
		return nil, 0, err
	}

	req.Header.Set("User-Agent", userAgent)

	start := time.Now()

	resp, err := h.client.Do(req)

	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		cancel()
		return nil, elapsed, err
	}

	// The response body is still tied to attemptCtx; the caller closes it
	// before the next attempt, so releasing cancel there is safe.
	resp.Body = cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}

	return resp, elapsed, nil
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()

	return err
}

func (h *HTTPChecker) validateResponse(svc models.ServiceEndpoint, resp *http.Response, elapsed int64) models.ServiceResult {
	code := resp.StatusCode

	body, readErr := io.ReadAll(resp.Body)
	closeBody(resp)

	result := models.ServiceResult{
		ID:           svc.ID,
		Name:         svc.Name,
		ResponseTime: models.MillisPtr(elapsed),
		StatusCode:   &code,
		CheckedAt:    time.Now().UTC(),
	}

	if readErr != nil {
		result.Status = models.StatusDegraded
		result.Error = "Response validation failed"

		return result
	}

	valid, err := svc.Validator.Validate(code, body)
	if err != nil {
		result.Status = models.StatusDegraded
		result.Error = "Response validation failed"

		return result
	}

	if valid {
		result.Status = models.StatusOperational
	} else {
		result.Status = models.StatusDegraded
	}

	return result
}

func statusAccepted(svc models.ServiceEndpoint, code int) bool {
	if svc.AcceptRange {
		return code >= 200 && code < 400
	}

	expected := svc.ExpectedStatus
	if expected == 0 {
		expected = http.StatusOK
	}

	return code == expected
}

// retryAfterWait parses a Retry-After header given in seconds, falling back
// to the default wait and never exceeding the ceiling.
func retryAfterWait(header string) time.Duration {
	wait := rateLimitDefaultWait

	if header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			wait = time.Duration(seconds) * time.Second
		}
	}

	if wait > rateLimitMaxWait {
		wait = rateLimitMaxWait
	}

	return wait
}

func classifyRequestError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}

	return err.Error()
}

func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	closeBody(resp)
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Printf("checker: failed to close response body: %v", err)
	}
}
