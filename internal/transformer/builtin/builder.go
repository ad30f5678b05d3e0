package builtin

import (
	"strings"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/parser/csv"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/transformer"
	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

// Builder turns table rows into normalized records. The mapping set is
// aligned with the table headers by position.
type Builder struct {
	Tags *TagSource
}

// NewBuilder returns a Builder with a fresh TagSource.
func NewBuilder() *Builder {
	return &Builder{Tags: NewTagSource()}
}

// Chain is the normalization pipeline applied to raw records.
func (b *Builder) Chain() transformer.Chain {
	if b.Tags == nil {
		b.Tags = NewTagSource()
	}
	return transformer.Chain{Trim{}, Canonicalize{}, Identify{Tags: b.Tags}}
}

// Raw extracts the mapped cells of row. Every schema field is present;
// unmapped fields are nil. When two columns target one field the first
// non-blank cell wins.
func Raw(row []string, set mapping.Set) records.Record {
	rec := make(records.Record, len(schema.Fields()))
	for _, f := range schema.Fields() {
		rec[string(f)] = nil
	}
	for i, m := range set {
		if m.Skipped() || !m.TargetField.Valid() || i >= len(row) {
			continue
		}
		key := string(m.TargetField)
		if strings.TrimSpace(rec.String(key)) != "" {
			continue
		}
		rec[key] = row[i]
	}
	return rec
}

// Record builds one normalized record.
func (b *Builder) Record(row []string, set mapping.Set) records.Record {
	return b.Chain().Apply([]records.Record{Raw(row, set)})[0]
}

// Records builds one normalized record per table row.
func (b *Builder) Records(t *csv.Table, set mapping.Set) []records.Record {
	out := make([]records.Record, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = Raw(row, set)
	}
	return b.Chain().Apply(out)
}
