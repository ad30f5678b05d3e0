// Package transformer chains record-level passes over normalized animal rows.
package transformer

import "github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"

// Transformer rewrites a batch of records, in place where possible.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Func adapts a function to Transformer.
type Func func([]records.Record) []records.Record

func (f Func) Apply(in []records.Record) []records.Record { return f(in) }
