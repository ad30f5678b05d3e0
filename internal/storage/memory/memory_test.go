package memory

import (
	"context"
	"testing"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage"
	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

func TestBulkInsert(t *testing.T) {
	t.Parallel()

	r := New()
	rec := records.Record{"tag": "A1"}
	if n, err := r.BulkInsert(context.Background(), "f", []records.Record{rec}); err != nil || n != 1 {
		t.Fatalf("BulkInsert = %d, %v", n, err)
	}
	rec["tag"] = "changed"
	got := r.Records("f")
	if len(got) != 1 || got[0]["tag"] != "A1" {
		t.Fatalf("Records = %#v", got)
	}
	if len(r.Records("other")) != 0 {
		t.Fatalf("records leaked across farms")
	}
}

func TestBulkInsert_FailOnRejectsWholeChunk(t *testing.T) {
	t.Parallel()

	r := New()
	r.FailOn = func(rec records.Record) bool { return rec["tag"] == "bad" }
	recs := []records.Record{{"tag": "A1"}, {"tag": "bad"}}
	if _, err := r.BulkInsert(context.Background(), "f", recs); err == nil {
		t.Fatalf("expected rejection")
	}
	if len(r.Records("f")) != 0 {
		t.Fatalf("partial chunk stored")
	}
}

func TestRegistered(t *testing.T) {
	t.Parallel()

	cfg := storage.Config{Kind: "memory"}
	repo, err := storage.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer repo.Close()
	if err := storage.EnsureTable(context.Background(), cfg, repo); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
}
