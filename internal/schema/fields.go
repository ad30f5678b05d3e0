// Package schema describes the fixed animal record schema that imported
// columns are mapped onto, and the confidence tiers shown next to each
// proposed mapping.
package schema

import "strings"

// Field identifies one column of the destination animal schema. The empty
// Field means "skip this column".
type Field string

const (
	FieldTag             Field = "tag"
	FieldName            Field = "name"
	FieldType            Field = "type"
	FieldBreed           Field = "breed"
	FieldAge             Field = "age"
	FieldWeight          Field = "weight"
	FieldHealthStatus    Field = "health_status"
	FieldSex             Field = "sex"
	FieldDateOfBirth     Field = "date_of_birth"
	FieldPurchaseCost    Field = "purchase_cost"
	FieldFeedType        Field = "feed_type"
	FieldNotes           Field = "notes"
	FieldMicrochipNumber Field = "microchip_number"
	FieldBrandMark       Field = "brand_mark"
	FieldColorMarkings   Field = "color_markings"

	// Skip is the absent target field.
	Skip Field = ""
)

// fields is the canonical order used for storage columns and listings.
var fields = []Field{
	FieldTag,
	FieldName,
	FieldType,
	FieldBreed,
	FieldAge,
	FieldWeight,
	FieldHealthStatus,
	FieldSex,
	FieldDateOfBirth,
	FieldPurchaseCost,
	FieldFeedType,
	FieldNotes,
	FieldMicrochipNumber,
	FieldBrandMark,
	FieldColorMarkings,
}

var labels = map[Field]string{
	FieldTag:             "Tag / ID",
	FieldName:            "Name",
	FieldType:            "Animal Type",
	FieldBreed:           "Breed",
	FieldAge:             "Age",
	FieldWeight:          "Weight",
	FieldHealthStatus:    "Health Status",
	FieldSex:             "Sex",
	FieldDateOfBirth:     "Date of Birth",
	FieldPurchaseCost:    "Purchase Cost",
	FieldFeedType:        "Feed Type",
	FieldNotes:           "Notes",
	FieldMicrochipNumber: "Microchip Number",
	FieldBrandMark:       "Brand Mark",
	FieldColorMarkings:   "Color / Markings",
}

// Fields returns the target fields in canonical order. The slice is a copy.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Columns returns the field identifiers as storage column names.
func Columns() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}

// Parse resolves s (case-insensitive, surrounding space ignored) to a Field.
// The empty string parses to Skip.
func Parse(s string) (Field, bool) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if f == Skip {
		return Skip, true
	}
	if _, ok := labels[f]; ok {
		return f, true
	}
	return Skip, false
}

// Valid reports whether f is one of the schema's fields.
func (f Field) Valid() bool {
	_, ok := labels[f]
	return ok
}

// Label is the human-readable column title.
func (f Field) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return "Skip"
}

// Identifies reports whether f lets a row be referenced later (tag or name).
func (f Field) Identifies() bool {
	return f == FieldTag || f == FieldName
}
