package schema

// Tier is the display bucket for a mapping confidence.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Confidence levels produced by the built-in mappers.
const (
	ConfidencePattern   = 0.8
	ConfidenceLoose     = 0.6
	ConfidenceConfirmed = 1.0
)

// TierOf buckets a confidence score for display. It never gates behavior.
func TierOf(confidence float64) Tier {
	switch {
	case confidence >= 0.8:
		return TierHigh
	case confidence >= 0.5:
		return TierMedium
	default:
		return TierLow
	}
}
