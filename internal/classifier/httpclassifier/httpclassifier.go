// Package httpclassifier reaches a column-classification service over HTTP.
//
// The service receives {"headers": [...], "sampleRows": [[...]]} and answers
// {"mappings": [{"sourceColumn": "...", "targetField": "...", "confidence": 0.9}]}.
// Every request is time-bounded by the client timeout; transient failures are
// retried with exponential backoff, everything else is returned as an error so
// the semantic mapper can fall back.
package httpclassifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping/semantic"
)

// Config configures the classifier.
//
// Zero values get defaults:
//   - Timeout:        10s
//   - InitialBackoff: 200ms
//   - MaxBackoff:     2s
type Config struct {
	// URL is the classification endpoint.
	URL string

	// Timeout is the per-request timeout applied at the http.Client level.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Headers are sent on every request (e.g. Authorization).
	Headers http.Header

	// Transport overrides http.DefaultTransport.
	Transport http.RoundTripper
}

// Classifier implements semantic.Classifier over HTTP.
type Classifier struct {
	url string
	c   *client
}

var _ semantic.Classifier = (*Classifier)(nil)

// New validates cfg and builds a Classifier.
func New(cfg Config) (*Classifier, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("httpclassifier: URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 2 * time.Second
	}
	return &Classifier{url: cfg.URL, c: newClient(cfg)}, nil
}

// Classify posts req and decodes the reply.
func (c *Classifier) Classify(ctx context.Context, req semantic.Request) (*semantic.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("httpclassifier: encode request: %w", err)
	}
	b, err := c.c.postJSON(ctx, c.url, body)
	if err != nil {
		return nil, err
	}
	return semantic.DecodeResponse(b)
}
