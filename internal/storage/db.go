package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver for local runs and tests
)

func init() {
	// sqlx only knows "sqlite3" out of the box
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB wraps the database connection together with its SQL dialect
type DB struct {
	conn    *sqlx.DB
	dialect Dialect
}

// DBConfig holds database configuration
type DBConfig struct {
	// DSN is a postgres:// URL, or sqlite://<path>, file:<path> or :memory: for SQLite
	DSN string

	// Pool settings. The jobs are single-threaded and keep one connection.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultDBConfig returns default database configuration
func DefaultDBConfig(dsn string) DBConfig {
	return DBConfig{
		DSN:          dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

// ParseDSN resolves the driver name and the driver-specific data source name
func ParseDSN(dsn string) (driver string, source string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return "sqlite", dsn, nil
	case strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname="):
		// key=value libpq form
		return "postgres", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database URL scheme")
	}
}

// NewDB opens the database and verifies the connection
func NewDB(cfg DBConfig) (*DB, error) {
	driver, source, err := ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Connect(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 1
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 1
	}

	// Configure connection pool
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &DB{
		conn:    conn,
		dialect: DialectFor(driver),
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks if the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Health returns the health status of the database
func (db *DB) Health(ctx context.Context) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	err := db.conn.GetContext(ctx, &result, "SELECT 1")
	if err != nil {
		return fmt.Errorf("health check query failed: %w", err)
	}

	return nil
}

// BeginTx starts a new transaction
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return db.conn.BeginTxx(ctx, opts)
}

// Conn returns the underlying sqlx connection
// Use this for custom queries not covered by repositories
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

// Dialect returns the SQL dialect of the connected store
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// TableExists reports whether the table is present
func (db *DB) TableExists(ctx context.Context, table TableName) (bool, error) {
	return db.dialect.TableExists(ctx, db.conn, table)
}

// Count returns the number of rows in a table
func (db *DB) Count(ctx context.Context, table TableName) (int64, error) {
	var n int64
	if err := db.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+db.dialect.QuoteTable(table)); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}
