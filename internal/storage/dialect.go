package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect covers the few statements that differ between supported stores
type Dialect interface {
	Name() string
	QuoteTable(t TableName) string
	TableExists(ctx context.Context, q sqlx.QueryerContext, t TableName) (bool, error)
	ColumnType(kind ColumnKind) string
}

// ColumnKind is a portable column type used by EnsureSchema
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnFloat
	ColumnTimestamp
)

// DialectFor returns the dialect for a driver name
func DialectFor(driver string) Dialect {
	if driver == "sqlite" {
		return sqliteDialect{}
	}
	return postgresDialect{}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) QuoteTable(t TableName) string {
	if t.Schema == "" {
		return quoteIdent(t.Name)
	}
	return quoteIdent(t.Schema) + "." + quoteIdent(t.Name)
}

func (d postgresDialect) TableExists(ctx context.Context, q sqlx.QueryerContext, t TableName) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, "SELECT to_regclass($1) IS NOT NULL", d.QuoteTable(t)); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", t, err)
	}
	return exists, nil
}

func (postgresDialect) ColumnType(kind ColumnKind) string {
	switch kind {
	case ColumnFloat:
		return "DOUBLE PRECISION"
	case ColumnTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// sqliteDialect ignores schema qualifiers: a SQLite file has a single schema.
type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) QuoteTable(t TableName) string {
	return quoteIdent(t.Name)
}

func (sqliteDialect) TableExists(ctx context.Context, q sqlx.QueryerContext, t TableName) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", t.Name)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", t, err)
	}
	return n > 0, nil
}

func (sqliteDialect) ColumnType(kind ColumnKind) string {
	switch kind {
	case ColumnFloat:
		return "REAL"
	case ColumnTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
