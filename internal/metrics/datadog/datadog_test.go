package datadog

import (
	"reflect"
	"testing"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/metrics"
)

type fakeClient struct {
	counts     map[string]int64
	histograms map[string]float64
	tags       [][]string
	closed     bool
}

func newFake() *fakeClient {
	return &fakeClient{counts: map[string]int64{}, histograms: map[string]float64{}}
}

func (f *fakeClient) Count(name string, value int64, tags []string, rate float64) error {
	f.counts[name] += value
	f.tags = append(f.tags, tags)
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, rate float64) error {
	f.histograms[name] = value
	return nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("expected error without Addr")
	}
}

func TestBackend_Forwards(t *testing.T) {
	t.Parallel()

	fc := newFake()
	b := &Backend{client: fc}
	b.IncCounter(metrics.RecordsTotal, 70.9, metrics.Labels{"kind": "inserted", "job": "j"})
	b.ObserveHistogram(metrics.StepDuration, 0.5, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if fc.counts[metrics.RecordsTotal] != 70 {
		t.Fatalf("count = %d", fc.counts[metrics.RecordsTotal])
	}
	if want := []string{"job:j", "kind:inserted"}; !reflect.DeepEqual(fc.tags[0], want) {
		t.Fatalf("tags = %v, want %v", fc.tags[0], want)
	}
	if fc.histograms[metrics.StepDuration] != 0.5 || !fc.closed {
		t.Fatalf("histograms = %v closed = %v", fc.histograms, fc.closed)
	}
}

func TestLabelsToTags_Empty(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v", got)
	}
}
