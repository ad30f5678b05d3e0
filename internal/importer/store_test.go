package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage/memory"
)

func TestStore_Lifecycle(t *testing.T) {
	t.Parallel()

	st := NewStore(Options{Sink: memory.New()})
	a := st.Create()
	b := st.Create()
	if a.ID() == b.ID() {
		t.Fatalf("duplicate session id %s", a.ID())
	}
	if got := st.IDs(); len(got) != 2 {
		t.Fatalf("IDs = %v", got)
	}

	got, err := st.Get(a.ID())
	if err != nil || got != a {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if err := a.Load(context.Background(), "herd.csv", strings.NewReader(herdCSV)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := st.Delete(a.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if a.Table() != nil {
		t.Fatal("deleted session was not reset")
	}
	if _, err := st.Get(a.ID()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Get after delete err = %v", err)
	}
	if err := st.Delete(a.ID()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("second Delete err = %v", err)
	}
}
