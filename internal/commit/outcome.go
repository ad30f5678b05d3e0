package commit

import (
	"encoding/json"
	"fmt"
)

// Outcome summarizes a finished run. SuccessCount+ErrorCount equals Total
// unless the run was cancelled.
type Outcome struct {
	SuccessCount    int
	ErrorCount      int
	Total           int
	ProgressPercent int
	Chunks          int
}

// Usable reports whether at least one record was imported.
func (o Outcome) Usable() bool { return o.SuccessCount > 0 }

// Message is the user-facing summary.
func (o Outcome) Message() string {
	switch {
	case o.Total == 0:
		return "The file has no animal rows to import."
	case o.SuccessCount == 0:
		return "No animals were imported. Check your file and column mapping."
	case o.ErrorCount > 0:
		return fmt.Sprintf("Imported %d of %d animals. %d could not be imported.", o.SuccessCount, o.Total, o.ErrorCount)
	case o.SuccessCount < o.Total:
		return fmt.Sprintf("Imported %d of %d animals before the import was stopped.", o.SuccessCount, o.Total)
	default:
		return fmt.Sprintf("Imported %d animals.", o.SuccessCount)
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SuccessCount    int    `json:"successCount"`
		ErrorCount      int    `json:"errorCount"`
		Total           int    `json:"total"`
		ProgressPercent int    `json:"progressPercent"`
		Chunks          int    `json:"chunks"`
		Usable          bool   `json:"usable"`
		Message         string `json:"message"`
	}{o.SuccessCount, o.ErrorCount, o.Total, o.ProgressPercent, o.Chunks, o.Usable(), o.Message()})
}
