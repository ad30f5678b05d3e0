// Package mapping proposes how the columns of an uploaded file correspond to
// the animal schema. The Heuristic mapper needs nothing but the header row;
// package semantic wraps an external classifier and falls back to it.
package mapping

import (
	"fmt"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
)

// ColumnMapping assigns one source column to a target field. An empty
// TargetField skips the column. Confidence is in [0,1] and only drives the
// display tier.
type ColumnMapping struct {
	SourceColumn string       `json:"sourceColumn"`
	TargetField  schema.Field `json:"targetField"`
	Confidence   float64      `json:"confidence"`
}

// Skipped reports whether the column is not imported.
func (m ColumnMapping) Skipped() bool { return m.TargetField == schema.Skip }

// Tier is the display bucket of Confidence.
func (m ColumnMapping) Tier() schema.Tier { return schema.TierOf(m.Confidence) }

// Set is an ordered list of mappings with at most one entry per source column.
type Set []ColumnMapping

// Index returns the position of column in s, or -1.
func (s Set) Index(column string) int {
	for i, m := range s {
		if m.SourceColumn == column {
			return i
		}
	}
	return -1
}

// Get returns the mapping for column.
func (s Set) Get(column string) (ColumnMapping, bool) {
	if i := s.Index(column); i >= 0 {
		return s[i], true
	}
	return ColumnMapping{}, false
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}

// WithConfidence returns a copy of s with every confidence set to c.
func (s Set) WithConfidence(c float64) Set {
	out := s.Clone()
	for i := range out {
		out[i].Confidence = c
	}
	return out
}

// Mapper proposes a mapping for a header row.
type Mapper interface {
	Map(headers []string) Set
}

// UniqueColumns returns headers with repeated names suffixed " (2)", " (3)"
// and so on, so that every column has its own mapping key. Blank headers
// become "Column N" (1-based position).
func UniqueColumns(headers []string) []string {
	out := make([]string, len(headers))
	used := make(map[string]bool, len(headers))
	for i, h := range headers {
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		name := h
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s (%d)", h, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}
