package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/commit"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage"
	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

func newMemRepo(tb testing.TB) storage.Repository {
	tb.Helper()
	ctx := context.Background()
	cfg := storage.Config{Kind: "sqlite", DSN: ":memory:", Table: "animals"}
	repo, err := storage.New(ctx, cfg)
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	tb.Cleanup(repo.Close)
	if err := storage.EnsureTable(ctx, cfg, repo); err != nil {
		tb.Fatalf("EnsureTable: %v", err)
	}
	return repo
}

func animal(tag string) records.Record {
	return records.Record{
		"tag":           tag,
		"name":          "Animal " + tag,
		"type":          "Cattle",
		"health_status": "Healthy",
		"purchase_cost": 1250.5,
		"notes":         nil,
	}
}

func count(tb testing.TB, repo storage.Repository, farm string) int64 {
	tb.Helper()
	n, err := repo.(*wrappedRepo).Count(context.Background(), farm)
	if err != nil {
		tb.Fatalf("Count: %v", err)
	}
	return n
}

func TestBulkInsert(t *testing.T) {
	t.Parallel()

	repo := newMemRepo(t)
	n, err := repo.BulkInsert(context.Background(), "farm-1", []records.Record{animal("A1"), animal("A2")})
	if err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}
	if got := count(t, repo, "farm-1"); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}
	if got := count(t, repo, "farm-2"); got != 0 {
		t.Fatalf("other farm count = %d", got)
	}
}

// A NOT NULL violation fails the whole chunk, including the rows before it.
func TestBulkInsert_ChunkIsAtomic(t *testing.T) {
	t.Parallel()

	repo := newMemRepo(t)
	bad := animal("A2")
	bad["name"] = nil
	if _, err := repo.BulkInsert(context.Background(), "f", []records.Record{animal("A1"), bad, animal("A3")}); err == nil {
		t.Fatalf("expected NOT NULL violation")
	}
	if got := count(t, repo, "f"); got != 0 {
		t.Fatalf("count = %d after failed chunk, want 0", got)
	}
}

func TestBulkInsert_WithCommitter(t *testing.T) {
	t.Parallel()

	repo := newMemRepo(t)
	recs := make([]records.Record, 120)
	for i := range recs {
		recs[i] = animal(fmt.Sprintf("A%03d", i))
	}
	recs[60]["tag"] = nil

	out, err := (&commit.Committer{Sink: repo}).Run(context.Background(), "farm-9", recs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.SuccessCount != 70 || out.ErrorCount != 50 {
		t.Fatalf("outcome = %+v", out)
	}
	if got := count(t, repo, "farm-9"); got != 70 {
		t.Fatalf("stored = %d, want 70", got)
	}
}

func TestNewRepository_Validation(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{Table: "t"}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
	if _, _, err := NewRepository(context.Background(), Config{DSN: ":memory:"}); err == nil {
		t.Fatalf("expected error for empty table")
	}
}

func TestDialect_CreateTable(t *testing.T) {
	t.Parallel()

	sql, err := storage.BuildCreateTableSQL(storage.AnimalTable("animals", Dialect), Dialect)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	for _, want := range []string{`CREATE TABLE IF NOT EXISTS "animals"`, `"purchase_cost" REAL`, `DEFAULT CURRENT_TIMESTAMP`} {
		if !strings.Contains(sql, want) {
			t.Fatalf("DDL missing %q:\n%s", want, sql)
		}
	}
}
