package mapping

import (
	"regexp"
	"strings"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/textutil"
)

// rule lists the header patterns for one field. Headers are folded (see
// textutil.Fold) before matching, so patterns are lowercase and use spaces
// for any separator.
type rule struct {
	field    schema.Field
	patterns []*regexp.Regexp
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// rules are tried in order and the first field with a matching pattern wins.
// Narrow fields come before the broad ones whose words they contain: microchip
// ids before tag, feed type before type, breed before name ("Breed Name").
var rules = []rule{
	{schema.FieldMicrochipNumber, patterns(`microchip`, `\bchip\b`, `\brfid\b`, `\beid\b`, `transponder`)},
	{schema.FieldBrandMark, patterns(`\bbrand`, `\btattoo`)},
	{schema.FieldColorMarkings, patterns(`colou?r`, `markings?`, `\bcoat\b`)},
	{schema.FieldFeedType, patterns(`\bfeed`, `\bdiet\b`, `\bration`, `\bfodder\b`)},
	{schema.FieldPurchaseCost, patterns(`cost`, `price`, `\bpaid\b`, `\bamount\b`, `\bvalue\b`)},
	{schema.FieldDateOfBirth, patterns(`birth`, `\bdob\b`, `\bborn\b`)},
	{schema.FieldHealthStatus, patterns(`health`, `\bstatus\b`, `\bcondition\b`, `\bwellness\b`)},
	{schema.FieldTag, patterns(`tag`, `\bid\b`, `ear tag`, `identification`, `\bident\b`)},
	{schema.FieldBreed, patterns(`breed`, `\bstrain\b`, `genetics`)},
	{schema.FieldName, patterns(`\bname\b`, `nickname`)},
	{schema.FieldType, patterns(`species`, `animal type`, `\bkind\b`, `category`, `\btype\b`, `livestock`)},
	{schema.FieldAge, patterns(`\bage\b`, `years old`, `\bage in`)},
	{schema.FieldWeight, patterns(`weight`, `\bmass\b`, `\bkg\b`, `\blbs?\b`)},
	{schema.FieldSex, patterns(`\bsex\b`, `gender`)},
	{schema.FieldNotes, patterns(`\bnotes?\b`, `comments?`, `remarks?`, `description`, `\bmemo\b`)},
}

// minLooseLen keeps very short headers ("a", "id") from loosely matching every
// field label that happens to contain them.
const minLooseLen = 3

// Heuristic maps headers by pattern tables alone. It is always available and
// is the fallback whenever the semantic classifier is not.
type Heuristic struct{}

// Map returns exactly one mapping per header, in header order.
func (Heuristic) Map(headers []string) Set {
	out := make(Set, 0, len(headers))
	for _, h := range headers {
		field, conf := MatchHeader(h)
		out = append(out, ColumnMapping{SourceColumn: h, TargetField: field, Confidence: conf})
	}
	return out
}

// MatchHeader returns the field a header maps to and the confidence of the
// match: ConfidencePattern for a table hit, ConfidenceLoose for the
// identifier/label containment fallback, and (Skip, 0) otherwise.
func MatchHeader(header string) (schema.Field, float64) {
	h := textutil.Fold(header)
	if h == "" {
		return schema.Skip, 0
	}
	for _, r := range rules {
		for _, p := range r.patterns {
			if p.MatchString(h) {
				return r.field, schema.ConfidencePattern
			}
		}
	}
	if f, ok := looseMatch(h); ok {
		return f, schema.ConfidenceLoose
	}
	return schema.Skip, 0
}

// looseMatch looks for a field whose identifier or label is contained in the
// header, or which contains the header.
func looseMatch(h string) (schema.Field, bool) {
	for _, f := range schema.Fields() {
		for _, cand := range []string{textutil.Fold(string(f)), textutil.Fold(f.Label())} {
			if strings.Contains(h, cand) {
				return f, true
			}
			if len(h) >= minLooseLen && strings.Contains(cand, h) {
				return f, true
			}
		}
	}
	return schema.Skip, false
}
