package httpclassifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBody caps how much of a classifier reply is read.
const maxBody = 1 << 20

// client posts JSON with a per-request timeout and exponential backoff on
// transient failures (transport errors, 429, 5xx).
type client struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	headers        http.Header

	// sleep is injectable to make tests fast and deterministic.
	sleep func(time.Duration)
}

func newClient(cfg Config) *client {
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	hdr := http.Header{}
	for k, vs := range cfg.Headers {
		for _, v := range vs {
			hdr.Add(k, v)
		}
	}
	return &client{
		httpClient:     &http.Client{Timeout: cfg.Timeout, Transport: transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		headers:        hdr,
		sleep:          time.Sleep,
	}
}

// postJSON sends body and returns the reply of the first attempt that is not
// transient. Non-2xx final statuses are errors.
func (c *client) postJSON(ctx context.Context, url string, body []byte) ([]byte, error) {
	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("httpclassifier: build request: %w", err)
		}
		for k, vs := range c.headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			b, rerr := io.ReadAll(io.LimitReader(resp.Body, maxBody))
			_ = resp.Body.Close()
			switch {
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("httpclassifier: retryable status %d", resp.StatusCode)
			case resp.StatusCode < 200 || resp.StatusCode > 299:
				return nil, fmt.Errorf("httpclassifier: status %d", resp.StatusCode)
			case rerr != nil:
				return nil, fmt.Errorf("httpclassifier: read body: %w", rerr)
			default:
				return b, nil
			}
		}

		if attempt+1 >= attempts {
			break
		}
		if err := sleepWithContext(ctx, c.sleep, backoffDuration(c.initialBackoff, attempt, c.maxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// isRetryableStatus treats 429 and 5xx as transient.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// backoffDuration returns initial*2^attempt clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, sleep func(time.Duration), d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		sleep(0)
		return nil
	}
}
