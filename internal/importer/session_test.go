package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zeebo/xxh3"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/commit"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/editor"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping/semantic"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/parser/csv"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage/memory"
	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

const herdCSV = "Tag,Animal,Weight\nA1,cow,500\nA2,Ewes,60\n,,\nA3,goat,45\n"

func newSession(t *testing.T, sink commit.Sink) *Session {
	t.Helper()
	return NewSession(Options{Job: "test", Sink: sink, ChunkSize: 2})
}

func TestSession_LoadProposesMapping(t *testing.T) {
	t.Parallel()

	s := newSession(t, memory.New())
	if s.State() != commit.StateUploaded {
		t.Fatalf("initial state = %s", s.State())
	}
	if err := s.Load(context.Background(), "herd.csv", strings.NewReader(herdCSV)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.State() != commit.StateMapped {
		t.Fatalf("state = %s, want mapped", s.State())
	}
	if s.Source() != semantic.SourceHeuristicFallback {
		t.Fatalf("source = %s", s.Source())
	}
	if got, want := s.Fingerprint(), xxh3.HashString(herdCSV); got != want {
		t.Fatalf("fingerprint = %x, want %x", got, want)
	}
	if n := len(s.Table().Rows); n != 3 {
		t.Fatalf("rows = %d, want 3 (blank row dropped)", n)
	}
	set := s.Editor().Mappings()
	want := []schema.Field{schema.FieldTag, schema.FieldType, schema.FieldWeight}
	for i, f := range want {
		if set[i].TargetField != f || set[i].Confidence != 0 {
			t.Fatalf("mapping[%d] = %+v, want %s at 0", i, set[i], f)
		}
	}

	snap := s.Snapshot(2)
	if snap.RowCount != 3 || len(snap.SampleRows) != 2 || !snap.Ready || snap.State != commit.StateMapped {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Mappings[0].Label != "Tag / ID" || snap.Mappings[0].Tier != schema.TierLow {
		t.Fatalf("mapping view = %+v", snap.Mappings[0])
	}
}

func TestSession_LoadUsesClassifier(t *testing.T) {
	t.Parallel()

	mapper := &semantic.Mapper{Classifier: semantic.ClassifierFunc(func(ctx context.Context, req semantic.Request) (*semantic.Response, error) {
		if len(req.SampleRows) != 3 {
			return nil, fmt.Errorf("sample rows = %d", len(req.SampleRows))
		}
		return &semantic.Response{Mappings: nil}, nil
	})}
	s := NewSession(Options{Mapper: mapper, Sink: memory.New()})
	if err := s.Load(context.Background(), "herd.csv", strings.NewReader(herdCSV)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	// A nil mappings array is malformed, so the heuristic answers.
	if s.Source() != semantic.SourceHeuristicFallback {
		t.Fatalf("source = %s", s.Source())
	}
}

func TestSession_LoadErrors(t *testing.T) {
	t.Parallel()

	s := newSession(t, memory.New())
	if err := s.Load(context.Background(), "herd.xlsx", strings.NewReader(herdCSV)); !errors.Is(err, csv.ErrUnsupportedExtension) {
		t.Fatalf("err = %v, want ErrUnsupportedExtension", err)
	}
	if err := s.Load(context.Background(), "herd.csv", strings.NewReader("\n \n")); !errors.Is(err, csv.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if s.State() != commit.StateUploaded || s.Table() != nil {
		t.Fatalf("failed load changed the session: %s", s.State())
	}
	if err := s.Assign("Tag", schema.FieldName); !errors.Is(err, ErrState) {
		t.Fatalf("Assign before load err = %v", err)
	}
	if _, err := s.Commit(context.Background(), "farm-1"); !errors.Is(err, ErrState) {
		t.Fatalf("Commit before load err = %v", err)
	}
}

func TestSession_CommitStoresRecords(t *testing.T) {
	t.Parallel()

	repo := memory.New()
	s := newSession(t, repo)
	ctx := context.Background()
	if err := s.Load(ctx, "herd.csv", strings.NewReader(herdCSV)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Assign("Weight", schema.Skip); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := s.Commit(ctx, " "); err == nil {
		t.Fatal("expected error for blank farm id")
	}

	out, err := s.Commit(ctx, "farm-1")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if out.SuccessCount != 3 || out.ErrorCount != 0 || out.Chunks != 2 || out.ProgressPercent != 100 {
		t.Fatalf("outcome = %+v", out)
	}
	if s.State() != commit.StateDone {
		t.Fatalf("state = %s, want done", s.State())
	}
	if got, ok := s.Outcome(); !ok || got != out {
		t.Fatalf("Outcome() = %+v %v", got, ok)
	}

	stored := repo.Records("farm-1")
	if len(stored) != 3 {
		t.Fatalf("stored %d records", len(stored))
	}
	if stored[1].String("type") != "Sheep" || stored[1].String("name") != "Animal A2" {
		t.Fatalf("record = %v", stored[1])
	}
	if stored[0]["weight"] != nil {
		t.Fatalf("skipped column imported: %v", stored[0])
	}

	if err := s.Assign("Tag", schema.FieldName); !errors.Is(err, editor.ErrFrozen) {
		t.Fatalf("edit after commit err = %v, want ErrFrozen", err)
	}
	if _, err := s.Commit(ctx, "farm-1"); !errors.Is(err, ErrState) {
		t.Fatalf("second commit err = %v, want ErrState", err)
	}
}

func TestSession_TotalFailureReturnsToMapping(t *testing.T) {
	t.Parallel()

	repo := memory.New()
	repo.FailOn = func(records.Record) bool { return true }
	s := newSession(t, repo)
	ctx := context.Background()
	if err := s.Load(ctx, "herd.csv", strings.NewReader(herdCSV)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := s.Commit(ctx, "farm-1")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if out.Usable() || out.ErrorCount != 3 {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Message() != "No animals were imported. Check your file and column mapping." {
		t.Fatalf("message = %q", out.Message())
	}
	if s.State() != commit.StateMapped || s.Editor().Frozen() {
		t.Fatalf("state = %s frozen=%v, want mapped and editable", s.State(), s.Editor().Frozen())
	}
	if err := s.Assign("Animal", schema.FieldBreed); err != nil {
		t.Fatalf("Assign after failure: %v", err)
	}

	repo.FailOn = nil
	if out, err = s.Commit(ctx, "farm-1"); err != nil || out.SuccessCount != 3 {
		t.Fatalf("retry commit = %+v, %v", out, err)
	}
}

func TestSession_PartialFailure(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("Tag,Name\n")
	for i := 1; i <= 120; i++ {
		fmt.Fprintf(&b, "T%03d,Cow %d\n", i, i)
	}
	calls := 0
	sink := commit.SinkFunc(func(ctx context.Context, farmID string, recs []records.Record) (int64, error) {
		calls++
		if calls == 2 {
			return 0, errors.New("constraint violation")
		}
		return int64(len(recs)), nil
	})
	s := NewSession(Options{Sink: sink})
	ctx := context.Background()
	if err := s.Load(ctx, "herd.csv", strings.NewReader(b.String())); err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := s.Commit(ctx, "farm-1")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if out.SuccessCount != 70 || out.ErrorCount != 50 || out.Total != 120 || !out.Usable() {
		t.Fatalf("outcome = %+v", out)
	}
	if s.State() != commit.StateDone {
		t.Fatalf("state = %s", s.State())
	}
}

func TestSession_Preview(t *testing.T) {
	t.Parallel()

	s := newSession(t, memory.New())
	if _, err := s.Preview(1); !errors.Is(err, ErrState) {
		t.Fatalf("Preview before load err = %v", err)
	}
	if err := s.Load(context.Background(), "herd.csv", strings.NewReader("Animal;Cost\nhorse;R 1,250.50\n")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	recs, err := s.Preview(5)
	if err != nil || len(recs) != 1 {
		t.Fatalf("Preview = %v, %v", recs, err)
	}
	if !strings.HasPrefix(recs[0].String("tag"), "IMP-") || recs[0].String("type") != "Horse" || recs[0]["purchase_cost"] != 1250.5 {
		t.Fatalf("preview record = %v", recs[0])
	}
}

func TestSession_Reset(t *testing.T) {
	t.Parallel()

	s := newSession(t, memory.New())
	if err := s.Load(context.Background(), "herd.csv", strings.NewReader(herdCSV)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Reset()
	if s.State() != commit.StateUploaded || s.Table() != nil || s.Editor() != nil || s.Fingerprint() != 0 {
		t.Fatalf("reset left state behind")
	}
	if len(s.Snapshot(5).Mappings) != 0 {
		t.Fatal("snapshot after reset has mappings")
	}
}

func TestSession_ConcurrentCommitIsRejected(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("Tag,Name\n")
	for i := 1; i <= 120; i++ {
		fmt.Fprintf(&b, "T%03d,Cow %d\n", i, i)
	}
	entered := make(chan struct{})
	release := make(chan struct{})
	first := true
	sink := commit.SinkFunc(func(ctx context.Context, farmID string, recs []records.Record) (int64, error) {
		if first {
			first = false
			close(entered)
			<-release
		}
		return int64(len(recs)), nil
	})
	s := NewSession(Options{Sink: sink})
	ctx := context.Background()
	if err := s.Load(ctx, "herd.csv", strings.NewReader(b.String())); err != nil {
		t.Fatalf("Load: %v", err)
	}

	type result struct {
		out commit.Outcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := s.Commit(ctx, "farm-1")
		done <- result{out, err}
	}()
	<-entered

	if _, err := s.Commit(ctx, "farm-1"); !errors.Is(err, ErrState) {
		t.Fatalf("second commit err = %v, want ErrState", err)
	}
	if s.State() != commit.StateCommitting || !s.Editor().Frozen() {
		t.Fatalf("running commit disturbed: state=%s frozen=%v", s.State(), s.Editor().Frozen())
	}
	if err := s.Assign("Tag", schema.FieldName); !errors.Is(err, editor.ErrFrozen) {
		t.Fatalf("edit during commit err = %v, want ErrFrozen", err)
	}
	if _, ok := s.Outcome(); ok {
		t.Fatal("outcome recorded before the running commit finished")
	}
	if err := s.Load(ctx, "herd.csv", strings.NewReader(herdCSV)); !errors.Is(err, ErrState) {
		t.Fatalf("load during commit err = %v, want ErrState", err)
	}

	close(release)
	res := <-done
	if res.err != nil || res.out.SuccessCount != 120 {
		t.Fatalf("first commit = %+v, %v", res.out, res.err)
	}
	if s.State() != commit.StateDone {
		t.Fatalf("state = %s, want done", s.State())
	}
}

func TestSession_ResetCancelsRunningCommit(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("Tag\n")
	for i := 1; i <= 120; i++ {
		fmt.Fprintf(&b, "T%03d\n", i)
	}
	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	sink := commit.SinkFunc(func(ctx context.Context, farmID string, recs []records.Record) (int64, error) {
		calls++
		if calls == 1 {
			close(entered)
			<-release
		}
		return int64(len(recs)), nil
	})
	s := NewSession(Options{Sink: sink})
	if err := s.Load(context.Background(), "herd.csv", strings.NewReader(b.String())); err != nil {
		t.Fatalf("Load: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Commit(context.Background(), "farm-1")
		done <- err
	}()
	<-entered
	s.Reset()
	close(release)

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("commit err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("sink calls = %d, want only the in-flight chunk", calls)
	}
	if s.State() != commit.StateUploaded {
		t.Fatalf("state = %s, want uploaded after reset", s.State())
	}
}
