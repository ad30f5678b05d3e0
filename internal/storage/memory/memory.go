// Package memory is an in-process sink for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage"
	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

// Repository keeps inserted records per farm. FailOn, when set, rejects any
// chunk containing a record it returns true for.
type Repository struct {
	mu     sync.Mutex
	byFarm map[string][]records.Record
	FailOn func(records.Record) bool
}

func New() *Repository {
	return &Repository{byFarm: map[string][]records.Record{}}
}

func (r *Repository) BulkInsert(ctx context.Context, farmID string, recs []records.Record) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for i, rec := range recs {
		if r.FailOn != nil && r.FailOn(rec) {
			return 0, fmt.Errorf("memory: record %d rejected", i)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range recs {
		cp := make(records.Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		r.byFarm[farmID] = append(r.byFarm[farmID], cp)
	}
	return int64(len(recs)), nil
}

// Exec accepts and ignores any statement.
func (r *Repository) Exec(context.Context, string) error { return nil }

func (r *Repository) Close() {}

// Records returns a copy of the records stored for farmID.
func (r *Repository) Records(farmID string) []records.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]records.Record(nil), r.byFarm[farmID]...)
}

func init() {
	storage.Register("memory", func(context.Context, storage.Config) (storage.Repository, error) {
		return New(), nil
	})
	storage.RegisterDDL("memory", func(context.Context, storage.Repository, string) error { return nil })
}
