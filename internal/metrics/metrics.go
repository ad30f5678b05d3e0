// Package metrics records import pipeline metrics through a pluggable
// backend. The default backend discards everything, so instrumentation is
// always safe to call; cmd/herdimport installs Pushgateway or DogStatsD.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by the backends.
const (
	StepTotal          = "herdimport_step_total"
	StepDuration       = "herdimport_step_duration_seconds"
	RecordsTotal       = "herdimport_records_total"
	ChunksTotal        = "herdimport_chunks_total"
	MappingSourceTotal = "herdimport_mapping_source_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error { return current().Flush() }

// RecordStep counts one execution of step (parse, map, commit) and observes
// its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow adds delta records of kind: parsed, dropped_blank, inserted or
// failed.
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordChunks adds delta submitted chunks.
func RecordChunks(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(ChunksTotal, float64(delta), Labels{"job": job})
}

// RecordMappingSource counts which mapper produced a proposal.
func RecordMappingSource(job, source string) {
	current().IncCounter(MappingSourceTotal, 1, Labels{"job": job, "source": source})
}
