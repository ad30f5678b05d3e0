package postgres

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage"
)

func TestSplitFQN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want pgx.Identifier
	}{
		{"animals", pgx.Identifier{"animals"}},
		{"public.animals", pgx.Identifier{"public", "animals"}},
		{"public..animals", pgx.Identifier{"public", "animals"}},
	}
	for _, tt := range tests {
		if got := splitFQN(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("splitFQN(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDialect_CreateTable(t *testing.T) {
	t.Parallel()

	sql, err := storage.BuildCreateTableSQL(storage.AnimalTable("public.animals", Dialect), Dialect)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "public"."animals"`,
		`"farm_id" TEXT NOT NULL`,
		`"tag" TEXT NOT NULL`,
		`"purchase_cost" DOUBLE PRECISION`,
		`"imported_at" TIMESTAMPTZ NOT NULL DEFAULT now()`,
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("DDL missing %q:\n%s", want, sql)
		}
	}
}

func TestFactory_UsesHook(t *testing.T) {
	want := errors.New("no db")
	var got Config
	old := newRepository
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return nil, nil, want
	}
	defer func() { newRepository = old }()

	_, err := storage.New(context.Background(), storage.Config{Kind: "postgres", DSN: "postgres://x", Table: "animals"})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if got.DSN != "postgres://x" || got.Table != "animals" {
		t.Fatalf("config = %+v", got)
	}
}

func TestNewRepository_RequiresTable(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "postgres://localhost/db"}); err == nil {
		t.Fatalf("expected error for empty table")
	}
}
