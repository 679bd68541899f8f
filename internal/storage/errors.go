package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyRecordSet is returned when a replace is attempted with no rows.
	// The live table is left untouched.
	ErrEmptyRecordSet = errors.New("refusing to replace table contents with an empty record set")
)

// RestoreOutcome describes what happened after a failed replace
type RestoreOutcome string

const (
	// RestoreNone means no restore was attempted (the replace succeeded)
	RestoreNone RestoreOutcome = ""
	// RestoreNotRequired means the rollback alone left the table in its original state
	RestoreNotRequired RestoreOutcome = "not_required"
	// RestoreSucceeded means rows were copied back from the backup table
	RestoreSucceeded RestoreOutcome = "succeeded"
	// RestoreFailed means copying rows back failed. ReplaceError.BackupRetained
	// tells whether the backup table is still there for manual recovery.
	RestoreFailed RestoreOutcome = "failed"
)

// ReplaceError is returned when a table replace did not happen.
// Even after a successful restore the refresh itself has failed.
type ReplaceError struct {
	Err            error
	RestoreErr     error
	BackupRetained bool
	Backup         TableName
}

func (e *ReplaceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table refresh failed: %v", e.Err)
	if e.RestoreErr != nil {
		fmt.Fprintf(&b, "; restore from backup failed: %v", e.RestoreErr)
	}
	if e.BackupRetained {
		fmt.Fprintf(&b, " (backup table %s retained for manual recovery)", e.Backup)
	}
	return b.String()
}

// Unwrap exposes both the refresh error and the restore error
func (e *ReplaceError) Unwrap() []error {
	errs := []error{e.Err}
	if e.RestoreErr != nil {
		errs = append(errs, e.RestoreErr)
	}
	return errs
}
