package storage

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx"
)

// namedInsertQuery builds "INSERT INTO t (a, b) VALUES (:a, :b)" for sqlx batch binding
func namedInsertQuery(table string, columns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(columns, ", :"),
	)
}

// insertBatches runs a named insert over rows in chunks of batchSize.
// rows must be a slice of structs or struct pointers with db tags.
func insertBatches(ctx context.Context, tx sqlx.ExtContext, query string, rows interface{}, batchSize int) (int64, error) {
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return 0, fmt.Errorf("insert rows must be a slice, got %T", rows)
	}
	if batchSize <= 0 {
		batchSize = v.Len()
	}

	var total int64
	for start := 0; start < v.Len(); start += batchSize {
		end := start + batchSize
		if end > v.Len() {
			end = v.Len()
		}

		result, err := sqlx.NamedExecContext(ctx, tx, query, v.Slice(start, end).Interface())
		if err != nil {
			return total, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			n = int64(end - start)
		}
		total += n
	}

	return total, nil
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
