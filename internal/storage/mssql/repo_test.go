package mssql

import (
	"context"
	"strings"
	"testing"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage"
	"github.com/MathysVH98/herdsync-690106b4-sub001/pkg/records"
)

func TestMsIdent(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"animals":  "[animals]",
		"odd]name": "[odd]]name]",
	}
	for in, want := range tests {
		if got := msIdent(in); got != want {
			t.Fatalf("msIdent(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Dialect.QuoteFQN("dbo.animals"); got != "[dbo].[animals]" {
		t.Fatalf("QuoteFQN = %q", got)
	}
}

func TestDialect_CreateTable(t *testing.T) {
	t.Parallel()

	sql, err := storage.BuildCreateTableSQL(storage.AnimalTable("dbo.animals", Dialect), Dialect)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	for _, want := range []string{
		"IF OBJECT_ID(N'dbo.animals', N'U') IS NULL",
		"CREATE TABLE [dbo].[animals]",
		"[notes] NVARCHAR(MAX)",
		"[purchase_cost] FLOAT",
		"[imported_at] DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME()",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("DDL missing %q:\n%s", want, sql)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := validate(Config{DSN: "sqlserver://sa:pw@localhost:1433?database=herd"}); err == nil {
		t.Fatalf("expected error for empty table")
	}
	if err := validate(Config{DSN: "sqlserver://sa:pw@localhost:1433?database=herd", Table: "dbo.animals"}); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

// Empty chunks never reach the database.
func TestBulkInsert_Empty(t *testing.T) {
	t.Parallel()

	var r Repository
	n, err := r.BulkInsert(context.Background(), "f", []records.Record{})
	if err != nil || n != 0 {
		t.Fatalf("BulkInsert(empty) = %d, %v", n, err)
	}
}
