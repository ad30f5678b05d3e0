// Package storage defines the record sink used by the committer and a small
// registry of backends. Backends register themselves in init; import
// storage/all to enable every built-in kind.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

// FarmColumn is the owner column added in front of the schema fields.
const FarmColumn = "farm_id"

// Repository is a bulk sink for normalized animal records.
type Repository interface {
	// BulkInsert stores recs for farmID atomically: all or nothing.
	BulkInsert(ctx context.Context, farmID string, recs []records.Record) (int64, error)
	// Exec runs a raw statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind  string
	DSN   string
	Table string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds or replaces the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository of cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Columns is the insert column order: farm_id then the schema fields.
func Columns() []string {
	return append([]string{FarmColumn}, schema.Columns()...)
}

// Rows aligns recs to Columns.
func Rows(farmID string, recs []records.Record) [][]any {
	cols := schema.Columns()
	out := make([][]any, len(recs))
	for i, r := range recs {
		row := make([]any, 0, len(cols)+1)
		row = append(row, farmID)
		row = append(row, r.Values(cols)...)
		out[i] = row
	}
	return out
}
