package storage

import (
	"context"
	"fmt"
	"strings"
)

// SchemaTables names the tables EnsureSchema creates
type SchemaTables struct {
	Metrics        TableName
	Mapping        TableName
	WorkingVersion TableName
}

// EnsureSchema creates the job tables when they are missing. It is meant for
// local SQLite databases; production tables are provisioned separately.
func EnsureSchema(ctx context.Context, db *DB, tables SchemaTables) error {
	d := db.dialect
	text, float, ts := d.ColumnType(ColumnText), d.ColumnType(ColumnFloat), d.ColumnType(ColumnTimestamp)

	metricsCols := []string{
		"aa_model_id " + text,
		"aa_slug " + text + " NOT NULL UNIQUE",
		"name " + text,
		"creator_name " + text,
		"creator_slug " + text,
		"release_date " + text,
		"intelligence_index " + float + " NOT NULL",
	}
	for _, col := range []string{
		"coding_index", "math_index",
		"mmlu_pro", "gpqa", "hle", "livecodebench", "scicode", "math_500", "aime", "aime_25",
		"ifbench", "lcr", "terminalbench_hard", "tau2",
		"price_1m_input_tokens", "price_1m_output_tokens", "price_1m_blended",
		"median_output_tokens_per_second", "median_time_to_first_token_seconds",
		"median_time_to_first_answer_token",
	} {
		metricsCols = append(metricsCols, col+" "+float)
	}

	statements := []string{
		createTable(d.QuoteTable(tables.Metrics), metricsCols),
		createTable(d.QuoteTable(tables.Mapping), []string{
			"provider_slug " + text + " NOT NULL",
			"aa_slug " + text + " NOT NULL",
			"inference_provider " + text + " NOT NULL",
			"created_at " + ts + " NOT NULL",
			"updated_at " + ts + " NOT NULL",
		}),
		createTable(d.QuoteTable(tables.WorkingVersion), []string{
			"inference_provider " + text,
			"provider_slug " + text,
		}),
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func createTable(name string, columns []string) string {
	return "CREATE TABLE IF NOT EXISTS " + name + " (\n\t" + strings.Join(columns, ",\n\t") + "\n)"
}
