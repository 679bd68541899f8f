package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vn6295337/intelligent-model-selector/internal/models"
)

// PerformanceRepository owns the Artificial Analysis metrics table
type PerformanceRepository struct {
	db        *DB
	table     TableName
	replacer  TableReplacer
	batchSize int
}

// NewPerformanceRepository creates a repository that replaces table through replacer
func NewPerformanceRepository(db *DB, table TableName, replacer TableReplacer, batchSize int) *PerformanceRepository {
	return &PerformanceRepository{
		db:        db,
		table:     table,
		replacer:  replacer,
		batchSize: batchSize,
	}
}

// Replace swaps the table contents for records. An empty record set is
// rejected before anything touches the table.
func (r *PerformanceRepository) Replace(ctx context.Context, records []*models.PerformanceRecord) (*ReplaceStats, error) {
	if len(records) == 0 {
		return nil, ErrEmptyRecordSet
	}

	query := namedInsertQuery(r.db.dialect.QuoteTable(r.table), models.PerformanceColumns)

	return r.replacer.Replace(ctx, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		return insertBatches(ctx, tx, query, records, r.batchSize)
	})
}

// ListSlugs returns the distinct aa_slug values in lexicographic order
func (r *PerformanceRepository) ListSlugs(ctx context.Context) ([]string, error) {
	return listPerformanceSlugs(ctx, r.db.conn, r.db.dialect.QuoteTable(r.table))
}

// List returns every row ordered by slug
func (r *PerformanceRepository) List(ctx context.Context) ([]*models.PerformanceRecord, error) {
	var records []*models.PerformanceRecord
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY aa_slug", joinColumns(models.PerformanceColumns), r.db.dialect.QuoteTable(r.table))
	if err := r.db.conn.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list performance records: %w", err)
	}
	return records, nil
}

// Count returns the number of rows in the metrics table
func (r *PerformanceRepository) Count(ctx context.Context) (int64, error) {
	return r.db.Count(ctx, r.table)
}

func listPerformanceSlugs(ctx context.Context, q sqlx.QueryerContext, table string) ([]string, error) {
	var slugs []string
	query := "SELECT DISTINCT aa_slug FROM " + table + " WHERE aa_slug IS NOT NULL ORDER BY aa_slug"
	if err := sqlx.SelectContext(ctx, q, &slugs, query); err != nil {
		return nil, fmt.Errorf("failed to fetch performance slugs: %w", err)
	}
	return slugs, nil
}
