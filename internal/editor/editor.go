// Package editor holds the human-reviewed column mapping between proposal
// and commit.
package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
)

var (
	ErrFrozen        = errors.New("editor: mapping is frozen")
	ErrUnknownColumn = errors.New("editor: unknown column")
	ErrUnknownField  = errors.New("editor: unknown field")
)

// Editor is safe for concurrent use.
//
// No two columns target the same field. Assign moves a field off the column
// that held it, which becomes a confirmed skip.
type Editor struct {
	mu     sync.Mutex
	set    mapping.Set
	frozen bool
}

// New starts from a proposed set. When the proposal targets a field more than
// once, the highest confidence keeps it (the earliest on a tie) and the
// others are skipped with their confidence unchanged.
func New(proposed mapping.Set) *Editor {
	set := proposed.Clone()
	owner := make(map[schema.Field]int, len(set))
	for i, m := range set {
		if m.Skipped() {
			continue
		}
		j, taken := owner[m.TargetField]
		if !taken {
			owner[m.TargetField] = i
			continue
		}
		if m.Confidence > set[j].Confidence {
			set[j].TargetField = schema.Skip
			owner[m.TargetField] = i
		} else {
			set[i].TargetField = schema.Skip
		}
	}
	return &Editor{set: set}
}

// Assign maps column to field with confidence 1.0. The empty field skips.
func (e *Editor) Assign(column string, field schema.Field) error {
	if field != schema.Skip && !field.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.frozen {
		return ErrFrozen
	}
	i := e.set.Index(column)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if field != schema.Skip {
		for j := range e.set {
			if j != i && e.set[j].TargetField == field {
				e.set[j].TargetField = schema.Skip
				e.set[j].Confidence = schema.ConfidenceConfirmed
			}
		}
	}
	e.set[i].TargetField = field
	e.set[i].Confidence = schema.ConfidenceConfirmed
	return nil
}

// Skip excludes column from the import.
func (e *Editor) Skip(column string) error {
	return e.Assign(column, schema.Skip)
}

// Mappings returns a copy of the current set.
func (e *Editor) Mappings() mapping.Set {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set.Clone()
}

// Ready reports whether some column targets tag or name. It is advisory:
// committing without either still works, the identifiers are synthesized.
func (e *Editor) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range e.set {
		if m.TargetField.Identifies() {
			return true
		}
	}
	return false
}

// Freeze rejects further edits until Unfreeze.
func (e *Editor) Freeze() {
	e.mu.Lock()
	e.frozen = true
	e.mu.Unlock()
}

func (e *Editor) Unfreeze() {
	e.mu.Lock()
	e.frozen = false
	e.mu.Unlock()
}

func (e *Editor) Frozen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frozen
}
