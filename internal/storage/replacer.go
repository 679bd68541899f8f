package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

// FillFunc inserts the new table contents inside the replace transaction
// and returns the number of rows written.
type FillFunc func(ctx context.Context, tx *sqlx.Tx) (int64, error)

// TableReplacer swaps the full contents of one table.
// Callers depend on this interface so a stronger store primitive can be
// substituted for the portable backup protocol.
type TableReplacer interface {
	Replace(ctx context.Context, fill FillFunc) (*ReplaceStats, error)
}

// ReplaceStats reports what a replace did. It is returned on failure too.
type ReplaceStats struct {
	BackedUp int64
	Deleted  int64
	Inserted int64

	Restore  RestoreOutcome
	Restored int64

	// CleanupErr is set when the post-commit backup drop failed.
	// The refresh itself succeeded.
	CleanupErr error
}

// BackupReplacer replaces a table through a backup copy:
//
//  1. drop any stale backup, then in one transaction copy the table aside,
//  2. delete all rows,
//  3. insert the new rows,
//  4. commit,
//  5. drop the backup (best effort).
//
// When 1-3 fail the transaction is rolled back and the table is restored from
// the backup in a second transaction. If that restore fails the backup table
// is kept for manual recovery.
//
// Readers that do not share the transaction's snapshot can see an empty table
// between steps 2 and 3 on stores without MVCC. That window is accepted.
type BackupReplacer struct {
	db     *DB
	target TableName
	backup TableName
	logger *utils.Logger
}

// NewBackupReplacer creates a replacer for target using target_backup as the copy
func NewBackupReplacer(db *DB, target TableName, logger *utils.Logger) *BackupReplacer {
	if logger == nil {
		logger = utils.NewLogger("table-replacer")
	}
	return &BackupReplacer{
		db:     db,
		target: target,
		backup: target.Backup(),
		logger: logger,
	}
}

// Replace runs the backup, delete, insert, restore protocol
func (r *BackupReplacer) Replace(ctx context.Context, fill FillFunc) (*ReplaceStats, error) {
	stats := &ReplaceStats{}
	backup := r.db.dialect.QuoteTable(r.backup)

	// Dropped outside the transaction so a leftover copy from an earlier failed
	// run can never be mistaken for this run's backup during restore.
	if _, err := r.db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+backup); err != nil {
		r.logger.Error("Failed to drop stale backup table", "backup", r.backup, "error", err)
		return stats, &ReplaceError{Err: fmt.Errorf("failed to drop stale backup table: %w", err), Backup: r.backup}
	}

	// Restore and cleanup must run even when ctx was cancelled mid-swap.
	cleanupCtx := context.WithoutCancel(ctx)

	if err := r.swap(ctx, fill, stats); err != nil {
		r.logger.Error("Error during refresh, transaction rolled back", "table", r.target, "error", err)

		replaceErr := &ReplaceError{Err: err, Backup: r.backup}
		if replaceErr.RestoreErr = r.restore(cleanupCtx, stats); replaceErr.RestoreErr != nil {
			exists, existsErr := r.db.TableExists(cleanupCtx, r.backup)
			if existsErr != nil {
				r.logger.Warn("Could not check for backup table", "backup", r.backup, "error", existsErr)
			}
			replaceErr.BackupRetained = exists
		}
		return stats, replaceErr
	}
	r.logger.Info("Transaction committed successfully", "table", r.target)

	if _, err := r.db.conn.ExecContext(cleanupCtx, "DROP TABLE IF EXISTS "+backup); err != nil {
		stats.CleanupErr = fmt.Errorf("failed to drop backup table %s: %w", r.backup, err)
		r.logger.Warn("Backup table could not be dropped after commit", "backup", r.backup, "error", err)
		return stats, nil
	}
	r.logger.Info("Backup table dropped", "backup", r.backup)

	return stats, nil
}

// swap performs steps 1-4 in a single transaction
func (r *BackupReplacer) swap(ctx context.Context, fill FillFunc, stats *ReplaceStats) error {
	target := r.db.dialect.QuoteTable(r.target)
	backup := r.db.dialect.QuoteTable(r.backup)

	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r.logger.Info("Creating backup table", "backup", r.backup)
	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+backup+" AS SELECT * FROM "+target); err != nil {
		return fmt.Errorf("failed to create backup table: %w", err)
	}
	if err := tx.GetContext(ctx, &stats.BackedUp, "SELECT COUNT(*) FROM "+backup); err != nil {
		return fmt.Errorf("failed to count backup rows: %w", err)
	}
	r.logger.Info("Backed up existing records", "count", stats.BackedUp)

	result, err := tx.ExecContext(ctx, "DELETE FROM "+target)
	if err != nil {
		return fmt.Errorf("failed to delete existing records: %w", err)
	}
	stats.Deleted, _ = result.RowsAffected()
	r.logger.Info("Deleted existing records", "count", stats.Deleted)

	inserted, err := fill(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}
	stats.Inserted = inserted
	r.logger.Info("Inserted records", "count", stats.Inserted)

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// restore copies the backup back over the target in its own transaction.
// Stores with transactional DDL roll the backup away together with the
// delete, in which case there is nothing to restore.
func (r *BackupReplacer) restore(ctx context.Context, stats *ReplaceStats) error {
	target := r.db.dialect.QuoteTable(r.target)
	backup := r.db.dialect.QuoteTable(r.backup)

	r.logger.Info("Attempting to restore from backup", "backup", r.backup)

	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		stats.Restore = RestoreFailed
		r.logger.Error("Failed to restore from backup", "error", err)
		return fmt.Errorf("failed to begin restore transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := r.db.dialect.TableExists(ctx, tx, r.backup)
	if err != nil {
		stats.Restore = RestoreFailed
		r.logger.Error("Failed to restore from backup", "error", err)
		return err
	}
	if !exists {
		stats.Restore = RestoreNotRequired
		r.logger.Info("No backup table after rollback; table is in its original state", "table", r.target)
		return nil
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+target); err != nil {
		stats.Restore = RestoreFailed
		r.logger.Error("Failed to restore from backup", "error", err)
		return fmt.Errorf("failed to clear partial rows: %w", err)
	}

	result, err := tx.ExecContext(ctx, "INSERT INTO "+target+" SELECT * FROM "+backup)
	if err != nil {
		stats.Restore = RestoreFailed
		r.logger.Error("Failed to restore from backup", "error", err)
		return fmt.Errorf("failed to copy rows back from backup: %w", err)
	}
	stats.Restored, _ = result.RowsAffected()

	if err := tx.Commit(); err != nil {
		stats.Restore = RestoreFailed
		r.logger.Error("Failed to restore from backup", "error", err)
		return fmt.Errorf("failed to commit restore: %w", err)
	}

	stats.Restore = RestoreSucceeded
	r.logger.Info("Restored from backup successfully", "count", stats.Restored)

	if _, err := r.db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+backup); err != nil {
		r.logger.Warn("Backup table could not be dropped after restore", "backup", r.backup, "error", err)
	}
	return nil
}

// TransactionalReplacer deletes and inserts inside one transaction and relies
// on rollback alone. Use it on stores with transactional DML such as PostgreSQL.
type TransactionalReplacer struct {
	db     *DB
	target TableName
	logger *utils.Logger
}

// NewTransactionalReplacer creates a replacer without a backup table
func NewTransactionalReplacer(db *DB, target TableName, logger *utils.Logger) *TransactionalReplacer {
	if logger == nil {
		logger = utils.NewLogger("table-replacer")
	}
	return &TransactionalReplacer{db: db, target: target, logger: logger}
}

// Replace deletes all rows and fills the table in one transaction
func (r *TransactionalReplacer) Replace(ctx context.Context, fill FillFunc) (*ReplaceStats, error) {
	stats := &ReplaceStats{}

	err := func() error {
		tx, err := r.db.conn.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		result, err := tx.ExecContext(ctx, "DELETE FROM "+r.db.dialect.QuoteTable(r.target))
		if err != nil {
			return fmt.Errorf("failed to delete existing records: %w", err)
		}
		stats.Deleted, _ = result.RowsAffected()
		r.logger.Info("Deleted existing records", "count", stats.Deleted)

		if stats.Inserted, err = fill(ctx, tx); err != nil {
			return fmt.Errorf("failed to insert records: %w", err)
		}
		r.logger.Info("Inserted records", "count", stats.Inserted)

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}()
	if err != nil {
		stats.Restore = RestoreNotRequired
		r.logger.Error("Error during refresh, transaction rolled back", "table", r.target, "error", err)
		return stats, &ReplaceError{Err: err}
	}

	r.logger.Info("Transaction committed successfully", "table", r.target)
	return stats, nil
}
