package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vn6295337/intelligent-model-selector/internal/models"
)

// MappingTables names the tables the mapping refresh touches
type MappingTables struct {
	Mapping        TableName // owned, rebuilt every run
	Metrics        TableName // read for aa_slug values
	WorkingVersion TableName // read-only source of provider models
}

// MappingStages are the mapping refresh operations, bound to one transaction
type MappingStages interface {
	Clear(ctx context.Context) (int64, error)
	ProviderModels(ctx context.Context) ([]models.ProviderModel, error)
	PerformanceSlugs(ctx context.Context) ([]string, error)
	Insert(ctx context.Context, mappings []models.MappingRecord) (int64, error)
}

// MappingRepository rebuilds the provider-to-AA mapping table
type MappingRepository struct {
	db        *DB
	tables    MappingTables
	batchSize int
}

// NewMappingRepository creates a new mapping repository
func NewMappingRepository(db *DB, tables MappingTables, batchSize int) *MappingRepository {
	return &MappingRepository{
		db:        db,
		tables:    tables,
		batchSize: batchSize,
	}
}

// Refresh runs fn inside a single transaction. The clear is only visible once
// fn returns nil; any error rolls the mapping table back to its previous rows.
func (r *MappingRepository) Refresh(ctx context.Context, fn func(MappingStages) error) error {
	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&mappingTx{tx: tx, repo: r}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mapping refresh: %w", err)
	}
	return nil
}

// mappingTx implements MappingStages on an open transaction
type mappingTx struct {
	tx   *sqlx.Tx
	repo *MappingRepository
}

func (m *mappingTx) quote(t TableName) string {
	return m.repo.db.dialect.QuoteTable(t)
}

// Clear deletes every existing mapping
func (m *mappingTx) Clear(ctx context.Context) (int64, error) {
	result, err := m.tx.ExecContext(ctx, "DELETE FROM "+m.quote(m.repo.tables.Mapping))
	if err != nil {
		return 0, fmt.Errorf("failed to clear mappings: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// ProviderModels returns distinct non-empty (inference_provider, provider_slug) pairs
func (m *mappingTx) ProviderModels(ctx context.Context) ([]models.ProviderModel, error) {
	query := `
		SELECT DISTINCT
			COALESCE(inference_provider, '') AS inference_provider,
			provider_slug
		FROM ` + m.quote(m.repo.tables.WorkingVersion) + `
		WHERE provider_slug IS NOT NULL
		  AND provider_slug != ''
		ORDER BY inference_provider, provider_slug
	`

	var pairs []models.ProviderModel
	if err := m.tx.SelectContext(ctx, &pairs, query); err != nil {
		return nil, fmt.Errorf("failed to fetch working_version models: %w", err)
	}
	return pairs, nil
}

// PerformanceSlugs returns the distinct aa_slug values from the metrics table
func (m *mappingTx) PerformanceSlugs(ctx context.Context) ([]string, error) {
	return listPerformanceSlugs(ctx, m.tx, m.quote(m.repo.tables.Metrics))
}

// Insert bulk inserts mappings
func (m *mappingTx) Insert(ctx context.Context, mappings []models.MappingRecord) (int64, error) {
	if len(mappings) == 0 {
		return 0, nil
	}
	query := namedInsertQuery(m.quote(m.repo.tables.Mapping), models.MappingColumns)
	n, err := insertBatches(ctx, m.tx, query, mappings, m.repo.batchSize)
	if err != nil {
		return n, fmt.Errorf("failed to insert mappings: %w", err)
	}
	return n, nil
}
