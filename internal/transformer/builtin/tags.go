package builtin

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// TagSource hands out tags for rows that have none, unique within one run:
// "IMP-<first 8 hex of run id>-<sequence>".
type TagSource struct {
	runID  uuid.UUID
	prefix string
	n      atomic.Int64
}

func NewTagSource() *TagSource {
	id := uuid.New()
	return &TagSource{
		runID:  id,
		prefix: "IMP-" + strings.ToUpper(id.String()[:8]),
	}
}

// RunID identifies the run the tags belong to.
func (s *TagSource) RunID() string { return s.runID.String() }

// Next returns the next tag. Safe for concurrent use.
func (s *TagSource) Next() string {
	return fmt.Sprintf("%s-%04d", s.prefix, s.n.Add(1))
}
