// Package records defines the row type shared by the normalizer, the
// committer and the storage backends.
package records

// Record is one normalized animal row keyed by target field identifier.
// Values are string, float64 or nil.
type Record map[string]any

// String returns the string value for key, or "" when the value is missing or
// not a string.
func (r Record) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// Values returns the record's values aligned to columns. Missing keys yield nil.
func (r Record) Values(columns []string) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = r[c]
	}
	return out
}
