package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
)

// ColumnDef describes one column. Name is unquoted; Default is raw SQL.
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
	Default  string
}

// TableDef is a dotted table name and its ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Dialect carries what differs between backends when rendering DDL.
type Dialect struct {
	Name string

	// Quote quotes one identifier segment.
	Quote func(string) string

	Text      string
	LongText  string
	Number    string
	Timestamp string
	Now       string

	// Create wraps the column list into a create-if-missing statement.
	Create func(fqn, quotedFQN, body string) string
}

// QuoteFQN quotes every dot-separated segment of name.
func (d Dialect) QuoteFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.Quote(p)
	}
	return strings.Join(parts, ".")
}

// AnimalTable is the sink table: farm_id, one column per schema field and an
// imported_at timestamp. Tag, name and type are always populated.
func AnimalTable(fqn string, d Dialect) TableDef {
	cols := []ColumnDef{{Name: FarmColumn, SQLType: d.Text}}
	for _, f := range schema.Fields() {
		c := ColumnDef{Name: string(f), SQLType: d.Text, Nullable: true}
		switch f {
		case schema.FieldTag, schema.FieldName, schema.FieldType, schema.FieldHealthStatus:
			c.Nullable = false
		case schema.FieldPurchaseCost:
			c.SQLType = d.Number
		case schema.FieldNotes:
			c.SQLType = d.LongText
		}
		cols = append(cols, c)
	}
	cols = append(cols, ColumnDef{Name: "imported_at", SQLType: d.Timestamp, Default: d.Now})
	return TableDef{FQN: fqn, Columns: cols}
}

// BuildCreateTableSQL renders t for d.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s ddl: column %s missing SQLType", d.Name, name)
		}

		var sb strings.Builder
		sb.WriteString(d.Quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())
	}
	return d.Create(fqn, d.QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// DDLBootstrapper creates table through repo if it does not exist.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL adds or replaces the bootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for cfg.Kind.
func EnsureTable(ctx context.Context, cfg Config, repo Repository) error {
	ddlMu.RLock()
	fn, ok := ddlFns[cfg.Kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", cfg.Kind)
	}
	return fn(ctx, repo, cfg.Table)
}

// ExecDDL is the common bootstrapper body: render AnimalTable for d and run it.
func ExecDDL(ctx context.Context, repo Repository, table string, d Dialect) error {
	stmt, err := BuildCreateTableSQL(AnimalTable(table, d), d)
	if err != nil {
		return fmt.Errorf("build DDL: %w", err)
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}
