package storage

import (
	"fmt"
	"strings"
)

// TableName is an optionally schema-qualified table
type TableName struct {
	Schema string
	Name   string
}

// ParseTableName splits "schema.table" on the first dot. Quotes are stripped so
// `ims."20_aa_performance_metrics"` and ims.20_aa_performance_metrics are equal.
func ParseTableName(s string) (TableName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TableName{}, fmt.Errorf("empty table name")
	}

	var t TableName
	if i := strings.Index(s, "."); i >= 0 {
		t.Schema = strings.Trim(s[:i], `"`)
		t.Name = strings.Trim(s[i+1:], `"`)
	} else {
		t.Name = strings.Trim(s, `"`)
	}

	if t.Name == "" {
		return TableName{}, fmt.Errorf("invalid table name %q", s)
	}
	return t, nil
}

// Backup returns the companion backup table in the same schema
func (t TableName) Backup() TableName {
	return TableName{Schema: t.Schema, Name: t.Name + "_backup"}
}

func (t TableName) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}
