// Package semantic adapts an external column classifier to the mapping.Set
// shape produced by the heuristic mapper.
//
// The classifier is a black box reached over a request/response boundary.
// Its answer is used verbatim when it conforms; on any failure (transport
// error, non-success status, malformed body, timeout) the whole answer is
// discarded and the heuristic mapping is returned with every confidence
// forced to 0. Heuristic and semantic results are never blended.
package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
)

// DefaultTimeout bounds a classification when Mapper.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// DefaultSampleRows is the number of leading data rows sent along with the
// headers.
const DefaultSampleRows = 5

// ErrMalformed is returned by DecodeResponse for bodies that are not a JSON
// object with a "mappings" array.
var ErrMalformed = errors.New("semantic: malformed classifier response")

// Request is the payload sent to the classifier.
type Request struct {
	Headers    []string   `json:"headers"`
	SampleRows [][]string `json:"sampleRows"`
}

// Response is the classifier's answer.
type Response struct {
	Mappings []mapping.ColumnMapping `json:"mappings"`
}

// Classifier is the external classification boundary.
type Classifier interface {
	Classify(ctx context.Context, req Request) (*Response, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, req Request) (*Response, error)

// Classify implements Classifier.
func (f ClassifierFunc) Classify(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Source tells the caller which path produced a mapping.
type Source string

const (
	SourceSemantic          Source = "semantic"
	SourceHeuristicFallback Source = "heuristic_fallback"
)

// Mapper asks Classifier for a mapping and falls back to Fallback.
type Mapper struct {
	// Classifier may be nil, in which case Map always falls back.
	Classifier Classifier

	// Fallback defaults to mapping.Heuristic{}.
	Fallback mapping.Mapper

	// Timeout bounds the whole classification; zero means DefaultTimeout.
	Timeout time.Duration

	// SampleRows caps the rows sent; zero means DefaultSampleRows.
	SampleRows int
}

// Map returns one mapping per header and the source that produced it. It
// never fails and returns within Timeout even if the classifier ignores ctx.
func (m *Mapper) Map(ctx context.Context, headers []string, rows [][]string) (mapping.Set, Source) {
	if m.Classifier == nil {
		return m.fallback(headers), SourceHeuristicFallback
	}

	n := m.SampleRows
	if n <= 0 {
		n = DefaultSampleRows
	}
	if n > len(rows) {
		n = len(rows)
	}
	req := Request{Headers: headers, SampleRows: rows[:n]}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		resp *Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := m.Classifier.Classify(ctx, req)
		done <- result{resp, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = fmt.Errorf("semantic: classify: %w", ctx.Err())
	}
	if res.err == nil && (res.resp == nil || res.resp.Mappings == nil) {
		res.err = ErrMalformed
	}
	if res.err != nil {
		log.Printf("semantic: classifier unavailable, using heuristic fallback: %v", res.err)
		return m.fallback(headers), SourceHeuristicFallback
	}
	return align(headers, res.resp.Mappings), SourceSemantic
}

func (m *Mapper) fallback(headers []string) mapping.Set {
	fb := m.Fallback
	if fb == nil {
		fb = mapping.Heuristic{}
	}
	return fb.Map(headers).WithConfidence(0)
}

// align orders the classifier's mappings by header. The first mapping for a
// column wins, mappings for unknown columns are dropped, and headers the
// classifier left out are skipped with confidence 0. A target that names no
// schema field is also a skip.
func align(headers []string, got []mapping.ColumnMapping) mapping.Set {
	first := make(map[string]mapping.ColumnMapping, len(got))
	for _, cm := range got {
		if _, dup := first[cm.SourceColumn]; !dup {
			first[cm.SourceColumn] = cm
		}
	}
	out := make(mapping.Set, 0, len(headers))
	for _, h := range headers {
		if cm, ok := first[h]; ok {
			if f, known := schema.Parse(string(cm.TargetField)); known {
				cm.TargetField = f
				out = append(out, cm)
				continue
			}
		}
		out = append(out, mapping.ColumnMapping{SourceColumn: h})
	}
	return out
}

// DecodeResponse parses a classifier body. A body without a "mappings" array
// is ErrMalformed.
func DecodeResponse(b []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if resp.Mappings == nil {
		return nil, fmt.Errorf("%w: missing mappings", ErrMalformed)
	}
	return &resp, nil
}
