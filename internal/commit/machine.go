package commit

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// State is the import lifecycle position.
type State int

const (
	StateUploaded State = iota
	StateMapped
	StateCommitting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateUploaded:
		return "uploaded"
	case StateMapped:
		return "mapped"
	case StateCommitting:
		return "committing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ErrTransition is returned for a step that is not legal from the current
// state.
var ErrTransition = errors.New("commit: invalid state transition")

// Progress is a snapshot of a run.
type Progress struct {
	State   State `json:"state"`
	Chunk   int   `json:"chunk"`
	Success int   `json:"successCount"`
	Errors  int   `json:"errorCount"`
	Total   int   `json:"total"`
	Percent int   `json:"progressPercent"`
}

// Machine tracks Uploaded -> Mapped -> Committing -> Done. It does no I/O,
// so the accounting can be driven directly in tests. Safe for concurrent use.
type Machine struct {
	mu sync.Mutex
	p  Progress
}

// NewMachine starts in Uploaded.
func NewMachine() *Machine { return &Machine{} }

// Map moves to Mapped. Remapping an already mapped upload is allowed.
func (m *Machine) Map() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p.State != StateUploaded && m.p.State != StateMapped {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, m.p.State, StateMapped)
	}
	m.p = Progress{State: StateMapped}
	return nil
}

// Begin enters Committing for total records.
func (m *Machine) Begin(total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p.State != StateMapped {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, m.p.State, StateCommitting)
	}
	if total < 0 {
		total = 0
	}
	m.p = Progress{State: StateCommitting, Total: total}
	return nil
}

// Record accounts one attempted chunk of n records. A non-nil err counts the
// whole chunk as failed.
func (m *Machine) Record(n int, err error) (Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p.State != StateCommitting {
		return m.p, fmt.Errorf("%w: record chunk in %s", ErrTransition, m.p.State)
	}
	m.p.Chunk++
	if err != nil {
		m.p.Errors += n
	} else {
		m.p.Success += n
	}
	m.p.Percent = percent(m.p.Success+m.p.Errors, m.p.Total)
	return m.p, nil
}

// Done ends the run and returns its outcome.
func (m *Machine) Done() (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p.State != StateCommitting {
		return Outcome{}, fmt.Errorf("%w: %s -> %s", ErrTransition, m.p.State, StateDone)
	}
	m.p.State = StateDone
	m.p.Percent = percent(m.p.Success+m.p.Errors, m.p.Total)
	return Outcome{
		SuccessCount:    m.p.Success,
		ErrorCount:      m.p.Errors,
		Total:           m.p.Total,
		ProgressPercent: m.p.Percent,
		Chunks:          m.p.Chunk,
	}, nil
}

// Reopen returns a finished run to Mapped, keeping nothing of it. Used when
// no record was imported so the mapping can be corrected.
func (m *Machine) Reopen() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p.State != StateDone {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, m.p.State, StateMapped)
	}
	m.p = Progress{State: StateMapped}
	return nil
}

// Reset returns to Uploaded from any state.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.p = Progress{}
	m.mu.Unlock()
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p.State
}

func (m *Machine) Progress() Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p
}

// percent is round(attempted/total*100); an empty run is complete.
func percent(attempted, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(attempted) / float64(total) * 100))
}
