package builtin

import (
	"strings"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

// Trim trims string values, turns NO-BREAK SPACE into a space and drops
// values that end up blank.
type Trim struct{}

func (Trim) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
			if s == "" {
				r[k] = nil
				continue
			}
			r[k] = s
		}
	}
	return in
}

// Canonicalize rewrites type, health_status and purchase_cost to their
// canonical forms. Type and health status are always set afterwards.
type Canonicalize struct{}

func (Canonicalize) Apply(in []records.Record) []records.Record {
	typ, hs, cost := string(schema.FieldType), string(schema.FieldHealthStatus), string(schema.FieldPurchaseCost)
	for _, r := range in {
		s, ok := r[typ].(string)
		r[typ] = NormalizeSpecies(s, ok)

		s, ok = r[hs].(string)
		r[hs] = NormalizeHealth(s, ok)

		switch v := r[cost].(type) {
		case float64:
		case string:
			if f, ok := NormalizeCost(v, true); ok {
				r[cost] = f
			} else {
				r[cost] = nil
			}
		default:
			r[cost] = nil
		}
	}
	return in
}

// Identify fills a missing tag from Tags and a missing name from the tag.
type Identify struct {
	Tags *TagSource
}

func (id Identify) Apply(in []records.Record) []records.Record {
	tag, name := string(schema.FieldTag), string(schema.FieldName)
	for _, r := range in {
		t := r.String(tag)
		if t == "" {
			t = id.Tags.Next()
			r[tag] = t
		}
		if r.String(name) == "" {
			r[name] = "Animal " + t
		}
	}
	return in
}
