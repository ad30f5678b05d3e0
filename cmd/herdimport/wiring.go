package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/classifier/anthropic"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/classifier/httpclassifier"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/config"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping/semantic"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/metrics"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/metrics/datadog"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/metrics/prompush"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage"
)

// buildClassifier returns nil for kind none, which makes the mapper use the
// heuristic directly.
func buildClassifier(cfg config.Import) (semantic.Classifier, error) {
	c := cfg.Classifier
	switch c.Kind {
	case "", "none":
		return nil, nil
	case "http":
		h := http.Header{}
		for k, v := range c.HTTP.Headers {
			h.Set(k, os.ExpandEnv(v))
		}
		return httpclassifier.New(httpclassifier.Config{
			URL:        c.HTTP.URL,
			Timeout:    c.HTTP.Timeout(),
			MaxRetries: c.HTTP.MaxRetries,
			Headers:    h,
		})
	case "anthropic":
		key := c.Anthropic.APIKey()
		if key == "" {
			log.Printf("classifier: %s not set; using heuristic mapping", c.Anthropic.APIKeyEnv)
			return nil, nil
		}
		return anthropic.New(anthropic.Config{
			Model:     c.Anthropic.Model,
			MaxTokens: c.Anthropic.MaxTokens,
			APIKey:    key,
		})
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", c.Kind)
	}
}

// openSink opens the configured repository and creates its table when asked.
func openSink(ctx context.Context, cfg config.Import) (storage.Repository, error) {
	scfg := storage.Config{
		Kind:  cfg.Storage.Kind,
		DSN:   cfg.Storage.DB.DSN,
		Table: cfg.Storage.DB.Table,
	}
	repo, err := storage.New(ctx, scfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if cfg.Storage.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, scfg, repo); err != nil {
			repo.Close()
			return nil, fmt.Errorf("ensure table %s: %w", scfg.Table, err)
		}
	}
	return repo, nil
}

// setupMetrics installs the metrics backend and returns its flush func.
// Backend and URLs resolve flag → env → config → default.
func setupMetrics(cfg config.Import, o options) func() {
	nop := func() {}
	name := firstNonEmpty(o.metricsBackend, os.Getenv("METRICS_BACKEND"), cfg.Metrics.Backend)

	var b metrics.Backend
	switch name {
	case "pushgateway":
		url := firstNonEmpty(o.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), cfg.Metrics.PushgatewayURL, "http://localhost:9091")
		pb, err := prompush.NewBackend(cfg.Job, url)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return nop
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", url, name, cfg.Job)
		b = pb
	case "datadog":
		addr := firstNonEmpty(os.Getenv("DOGSTATSD_ADDR"), cfg.Metrics.DatadogAddr, "127.0.0.1:8125")
		db, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "herdsync.", GlobalTags: []string{"job:" + cfg.Job}})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return nop
		}
		log.Printf("metrics: addr=%v, backend=%v", addr, name)
		b = db
	case "", "none":
		return nop
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
		return nop
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
