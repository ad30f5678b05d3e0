// Package commit submits normalized records to a sink in fixed-size chunks
// and accounts for partial failure.
//
// Chunks are submitted strictly one after another. A failed chunk counts all
// of its records as errors and the run continues with the next chunk; no
// chunk is retried and committed chunks are never rolled back.
package commit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

// DefaultChunkSize is used when Committer.ChunkSize is zero.
const DefaultChunkSize = 50

// Sink persists one chunk atomically: either every record is stored or the
// call fails.
type Sink interface {
	BulkInsert(ctx context.Context, farmID string, recs []records.Record) (int64, error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, farmID string, recs []records.Record) (int64, error)

func (f SinkFunc) BulkInsert(ctx context.Context, farmID string, recs []records.Record) (int64, error) {
	return f(ctx, farmID, recs)
}

type Committer struct {
	Sink      Sink
	ChunkSize int

	// OnProgress, if set, is called after every chunk.
	OnProgress func(Progress)
}

// Run commits recs with a private Machine.
func (c *Committer) Run(ctx context.Context, farmID string, recs []records.Record) (Outcome, error) {
	m := NewMachine()
	if err := m.Map(); err != nil {
		return Outcome{}, err
	}
	return c.RunMachine(ctx, m, farmID, recs)
}

// RunMachine commits recs, driving m from Mapped to Done.
//
// ctx is checked before each chunk. A chunk already submitted is allowed to
// finish even if ctx is cancelled meanwhile; the run then stops and returns
// the partial outcome together with ctx.Err().
func (c *Committer) RunMachine(ctx context.Context, m *Machine, farmID string, recs []records.Record) (Outcome, error) {
	if c.Sink == nil {
		return Outcome{}, fmt.Errorf("commit: sink must not be nil")
	}
	if err := m.Begin(len(recs)); err != nil {
		return Outcome{}, err
	}
	return c.RunStarted(ctx, m, farmID, recs)
}

// RunStarted is RunMachine for a machine the caller already moved to
// Committing with Begin(len(recs)), typically under its own lock so that
// no second run can start in between.
func (c *Committer) RunStarted(ctx context.Context, m *Machine, farmID string, recs []records.Record) (Outcome, error) {
	if c.Sink == nil {
		return Outcome{}, fmt.Errorf("commit: sink must not be nil")
	}
	if st := m.State(); st != StateCommitting {
		return Outcome{}, fmt.Errorf("%w: run from %s", ErrTransition, st)
	}
	size := c.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	start := time.Now()
	var stopErr error
	for lo := 0; lo < len(recs); lo += size {
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}
		hi := min(lo+size, len(recs))
		chunk := recs[lo:hi]

		_, err := c.Sink.BulkInsert(context.WithoutCancel(ctx), farmID, chunk)
		p, _ := m.Record(len(chunk), err)
		if err != nil {
			log.Printf("commit: chunk #%d failed rows=%d err=%v", p.Chunk, len(chunk), err)
		}
		log.Printf("chunk #%d: rows=%d success=%d errors=%d progress=%d%%", p.Chunk, len(chunk), p.Success, p.Errors, p.Percent)
		if c.OnProgress != nil {
			c.OnProgress(p)
		}
	}

	out, err := m.Done()
	if err != nil {
		return out, err
	}
	log.Printf("commit: done farm=%s total=%d success=%d errors=%d chunks=%d elapsed=%s",
		farmID, out.Total, out.SuccessCount, out.ErrorCount, out.Chunks, time.Since(start).Truncate(time.Millisecond))
	if c.OnProgress != nil && out.Total == 0 {
		c.OnProgress(m.Progress())
	}
	return out, stopErr
}
