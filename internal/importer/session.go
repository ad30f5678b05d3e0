// Package importer runs one upload through parse, mapping review and commit.
//
// A Session is the single logical flow of one import: Load proposes a
// mapping, the caller edits it through Editor or Assign, and Commit freezes
// the mapping, normalizes every row and submits chunks to the sink. Sessions
// live in memory only; nothing is resumed across process restarts.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/commit"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/editor"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping/semantic"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/metrics"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/parser/csv"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/transformer/builtin"
	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

var (
	ErrNoSession = errors.New("importer: no such import session")
	ErrState     = errors.New("importer: operation not allowed in the current state")
)

// Options are shared by every session of a Store.
type Options struct {
	// Job labels metrics.
	Job string

	// Parser defaults to delimiter sniffing.
	Parser *csv.Parser

	// Mapper defaults to a semantic.Mapper without classifier, i.e. the
	// heuristic fallback.
	Mapper *semantic.Mapper

	Sink      commit.Sink
	ChunkSize int
}

func (o Options) withDefaults() Options {
	if o.Job == "" {
		o.Job = "herdimport"
	}
	if o.Parser == nil {
		o.Parser = csv.NewParser(csv.Options{})
	}
	if o.Mapper == nil {
		o.Mapper = &semantic.Mapper{}
	}
	return o
}

// Session is safe for concurrent use. Progress and State may be read while
// Commit runs.
type Session struct {
	id   string
	opts Options

	mu          sync.Mutex
	machine     *commit.Machine
	name        string
	table       *csv.Table
	columns     []string
	editor      *editor.Editor
	source      semantic.Source
	fingerprint uint64
	outcome     *commit.Outcome
	cancel      context.CancelFunc
	gen         int
}

// NewSession returns an empty session in the Uploaded state.
func NewSession(opts Options) *Session {
	return &Session{
		id:      uuid.NewString(),
		opts:    opts.withDefaults(),
		machine: commit.NewMachine(),
	}
}

func (s *Session) ID() string { return s.id }

// Load parses the upload and proposes a mapping. Loading again replaces the
// previous upload unless a commit is running.
func (s *Session) Load(ctx context.Context, name string, r io.Reader) error {
	if s.State() == commit.StateCommitting {
		return fmt.Errorf("%w: commit in progress", ErrState)
	}
	job := s.opts.Job

	start := time.Now()
	h := xxh3.New()
	tbl, err := s.opts.Parser.ReadFile(name, io.TeeReader(r, h))
	metrics.RecordStep(job, "parse", err, time.Since(start))
	if err != nil {
		log.Printf("importer: parse failed id=%s file=%q err=%v", s.id, name, err)
		return err
	}
	metrics.RecordRow(job, "parsed", int64(len(tbl.Rows)))
	metrics.RecordRow(job, "dropped_blank", int64(tbl.DroppedBlank))

	columns := mapping.UniqueColumns(tbl.Headers)
	n := s.opts.Mapper.SampleRows
	if n <= 0 {
		n = semantic.DefaultSampleRows
	}
	start = time.Now()
	proposed, source := s.opts.Mapper.Map(ctx, columns, tbl.Sample(n))
	metrics.RecordStep(job, "map", nil, time.Since(start))
	metrics.RecordMappingSource(job, string(source))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.State() == commit.StateCommitting {
		return fmt.Errorf("%w: commit in progress", ErrState)
	}
	m := commit.NewMachine()
	if err := m.Map(); err != nil {
		return err
	}
	s.machine = m
	s.gen++
	s.name = name
	s.table = tbl
	s.columns = columns
	s.editor = editor.New(proposed)
	s.source = source
	s.fingerprint = h.Sum64()
	s.outcome = nil

	log.Printf("importer: loaded id=%s file=%q rows=%d columns=%d dropped_blank=%d source=%s fingerprint=%016x",
		s.id, name, len(tbl.Rows), len(columns), tbl.DroppedBlank, source, s.fingerprint)
	return nil
}

// Table is the parsed upload, or nil before Load.
func (s *Session) Table() *csv.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Columns are the mapping keys: the headers made unique.
func (s *Session) Columns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.columns...)
}

// Editor is the mapping under review, or nil before Load.
func (s *Session) Editor() *editor.Editor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor
}

// Assign edits the mapping of column. The empty field skips it.
func (s *Session) Assign(column string, field schema.Field) error {
	ed := s.Editor()
	if ed == nil {
		return fmt.Errorf("%w: nothing uploaded", ErrState)
	}
	return ed.Assign(column, field)
}

// Source reports which mapper produced the proposal.
func (s *Session) Source() semantic.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Fingerprint is the xxh3 hash of the uploaded bytes.
func (s *Session) Fingerprint() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerprint
}

func (s *Session) State() commit.State { return s.currentMachine().State() }

func (s *Session) Progress() commit.Progress { return s.currentMachine().Progress() }

func (s *Session) currentMachine() *commit.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine
}

// Outcome is the result of the last finished commit.
func (s *Session) Outcome() (commit.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return commit.Outcome{}, false
	}
	return *s.outcome, true
}

// Preview normalizes up to n leading rows with the current mapping without
// committing them. Synthesized tags come from a throwaway run.
func (s *Session) Preview(n int) ([]records.Record, error) {
	s.mu.Lock()
	tbl, ed := s.table, s.editor
	s.mu.Unlock()
	if tbl == nil || ed == nil {
		return nil, fmt.Errorf("%w: nothing uploaded", ErrState)
	}
	if n > len(tbl.Rows) || n < 0 {
		n = len(tbl.Rows)
	}
	set := ed.Mappings()
	b := builtin.NewBuilder()
	out := make([]records.Record, 0, n)
	for _, row := range tbl.Rows[:n] {
		out = append(out, b.Record(row, set))
	}
	return out, nil
}

// Commit freezes the mapping and submits every row to the sink for farmID.
//
// When nothing was imported the mapping is unfrozen and the session returns
// to Mapped so the user can correct it. Cancelling ctx stops before the next
// chunk; the partial outcome is returned with ctx.Err().
func (s *Session) Commit(ctx context.Context, farmID string) (commit.Outcome, error) {
	if strings.TrimSpace(farmID) == "" {
		return commit.Outcome{}, errors.New("importer: farm id must not be empty")
	}
	if s.opts.Sink == nil {
		return commit.Outcome{}, errors.New("importer: no sink configured")
	}

	s.mu.Lock()
	if s.editor == nil || s.machine.State() != commit.StateMapped {
		st := s.machine.State()
		s.mu.Unlock()
		return commit.Outcome{}, fmt.Errorf("%w: commit from %s", ErrState, st)
	}
	tbl := s.table
	m := s.machine
	// Entering Committing under s.mu makes a concurrent Commit fail the
	// Mapped check above instead of racing this one.
	if err := m.Begin(len(tbl.Rows)); err != nil {
		s.mu.Unlock()
		return commit.Outcome{}, fmt.Errorf("%w: %v", ErrState, err)
	}
	s.editor.Freeze()
	set := s.editor.Mappings()
	gen := s.gen
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	b := builtin.NewBuilder()
	recs := b.Records(tbl, set)
	log.Printf("importer: commit id=%s farm=%s records=%d run=%s", s.id, farmID, len(recs), b.Tags.RunID())

	c := &commit.Committer{Sink: s.opts.Sink, ChunkSize: s.opts.ChunkSize}
	start := time.Now()
	out, err := c.RunStarted(ctx, m, farmID, recs)
	s.record(out, err, time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel = nil
	if gen != s.gen || m.State() != commit.StateDone {
		// Reset or reloaded meanwhile; committed chunks stay committed.
		return out, err
	}
	s.outcome = &out
	if !out.Usable() {
		if rerr := m.Reopen(); rerr != nil {
			log.Printf("importer: reopen id=%s err=%v", s.id, rerr)
		}
		s.editor.Unfreeze()
	}
	log.Printf("importer: %s", out.Message())
	return out, err
}

func (s *Session) record(out commit.Outcome, err error, d time.Duration) {
	job := s.opts.Job
	stepErr := err
	if stepErr == nil && !out.Usable() && out.Total > 0 {
		stepErr = errors.New("no records imported")
	}
	metrics.RecordStep(job, "commit", stepErr, d)
	metrics.RecordRow(job, "inserted", int64(out.SuccessCount))
	metrics.RecordRow(job, "failed", int64(out.ErrorCount))
	metrics.RecordChunks(job, int64(out.Chunks))
}

// Reset discards the upload and mapping. A running commit stops before its
// next chunk; chunks already stored are not rolled back.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.name = ""
	s.table = nil
	s.columns = nil
	s.editor = nil
	s.source = ""
	s.fingerprint = 0
	s.outcome = nil
	s.machine = commit.NewMachine()
	log.Printf("importer: reset id=%s", s.id)
}
