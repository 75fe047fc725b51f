package query

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/siadai/siadchat/internal/table"
)

// DefaultTableName is the name the session table is exposed under.
const DefaultTableName = "dados"

// EmptyColumnName replaces the empty key a flattened root scalar produces.
const EmptyColumnName = "valor"

// ColumnNames returns the SQL names for table columns, in the same order.
// DuckDB identifiers are case-insensitive, so names that collide ignoring
// case get a numeric suffix: "id", "ID" become "id", "ID_2".
func ColumnNames(columns []string) []string {
	names := make([]string, len(columns))
	used := make(map[string]struct{}, len(columns))
	for i, column := range columns {
		if column == "" {
			column = EmptyColumnName
		}
		name := column
		for n := 2; ; n++ {
			if _, taken := used[strings.ToLower(name)]; !taken {
				break
			}
			name = column + "_" + strconv.Itoa(n)
		}
		used[strings.ToLower(name)] = struct{}{}
		names[i] = name
	}
	return names
}

type Request struct {
	SQL       string
	RowLimit  int
	TableName string
	Table     table.Table
}

type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

// IsReadOnly accepts a single SELECT or WITH statement.
func IsReadOnly(sqlText string) bool {
	normalized := strings.ToLower(StripTrailingSemicolons(sqlText))
	if normalized == "" || strings.Contains(normalized, ";") {
		return false
	}
	return strings.HasPrefix(normalized, "select") || strings.HasPrefix(normalized, "with")
}

func StripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
