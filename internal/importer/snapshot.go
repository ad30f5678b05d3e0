package importer

import (
	"fmt"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/commit"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping/semantic"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
)

// MappingView is one column of the review screen.
type MappingView struct {
	SourceColumn string       `json:"sourceColumn"`
	TargetField  schema.Field `json:"targetField"`
	Label        string       `json:"label"`
	Confidence   float64      `json:"confidence"`
	Tier         schema.Tier  `json:"tier"`
}

// Snapshot is the JSON view of a session.
type Snapshot struct {
	ID            string          `json:"id"`
	State         commit.State    `json:"state"`
	File          string          `json:"file,omitempty"`
	Columns       []string        `json:"columns"`
	RowCount      int             `json:"rowCount"`
	SampleRows    [][]string      `json:"sampleRows"`
	Mappings      []MappingView   `json:"mappings"`
	MappingSource semantic.Source `json:"mappingSource,omitempty"`
	Ready         bool            `json:"ready"`
	Fingerprint   string          `json:"fingerprint,omitempty"`
	Progress      commit.Progress `json:"progress"`
	Outcome       *commit.Outcome `json:"outcome,omitempty"`
}

// Snapshot captures the session for display. sample caps the preview rows.
func (s *Session) Snapshot(sample int) Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		ID:            s.id,
		File:          s.name,
		Columns:       append([]string{}, s.columns...),
		MappingSource: s.source,
		Mappings:      []MappingView{},
		SampleRows:    [][]string{},
	}
	tbl, ed, m := s.table, s.editor, s.machine
	if s.table != nil {
		snap.Fingerprint = fmt.Sprintf("%016x", s.fingerprint)
	}
	if s.outcome != nil {
		o := *s.outcome
		snap.Outcome = &o
	}
	s.mu.Unlock()

	snap.Progress = m.Progress()
	snap.State = snap.Progress.State
	if tbl != nil {
		snap.RowCount = len(tbl.Rows)
		snap.SampleRows = tbl.Sample(sample)
	}
	if ed != nil {
		snap.Ready = ed.Ready()
		for _, cm := range ed.Mappings() {
			snap.Mappings = append(snap.Mappings, MappingView{
				SourceColumn: cm.SourceColumn,
				TargetField:  cm.TargetField,
				Label:        cm.TargetField.Label(),
				Confidence:   cm.Confidence,
				Tier:         cm.Tier(),
			})
		}
	}
	return snap
}
