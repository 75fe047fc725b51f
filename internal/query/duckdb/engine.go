package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/siadai/siadchat/internal/query"
)

// OpenFunc opens the database a single Execute call runs against. The
// returned handle is closed when Execute returns.
type OpenFunc func() (*sql.DB, error)

type Engine struct {
	Open OpenFunc
}

func NewEngine() *Engine {
	return &Engine{Open: openInMemory}
}

func openInMemory() (*sql.DB, error) {
	return sql.Open("duckdb", "")
}

// Execute loads the request table into a fresh in-memory DuckDB database,
// disables external access and runs the read-only query against it.
func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	if strings.TrimSpace(request.SQL) == "" {
		return query.Result{}, fmt.Errorf("sql is required")
	}
	if !query.IsReadOnly(request.SQL) {
		return query.Result{}, fmt.Errorf("only a single read-only SELECT/WITH query is allowed")
	}
	if request.Table.IsEmpty() {
		return query.Result{}, fmt.Errorf("table has no data")
	}
	tableName := request.TableName
	if tableName == "" {
		tableName = query.DefaultTableName
	}
	open := e.Open
	if open == nil {
		open = openInMemory
	}

	start := time.Now()
	encoded, err := encodeTableToParquet(request.Table)
	if err != nil {
		return query.Result{}, fmt.Errorf("encode table: %w", err)
	}

	workDir, err := os.MkdirTemp("", "siadchat-query-")
	if err != nil {
		return query.Result{}, fmt.Errorf("create query temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	localPath := filepath.Join(workDir, sanitizeFileComponent(tableName)+".parquet")
	if err := os.WriteFile(localPath, encoded.Data, 0o600); err != nil {
		return query.Result{}, fmt.Errorf("write local parquet file %q: %w", localPath, err)
	}

	db, err := open()
	if err != nil {
		return query.Result{}, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }()

	// A single connection keeps the access setting and the table on the same session.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, loadTableSQL(tableName, localPath, encoded.Columns)); err != nil {
		return query.Result{}, fmt.Errorf("load table %q: %w", tableName, err)
	}
	if _, err := db.ExecContext(ctx, "SET enable_external_access = false"); err != nil {
		return query.Result{}, fmt.Errorf("restrict external access: %w", err)
	}

	sqlText := query.StripTrailingSemicolons(request.SQL)
	if request.RowLimit > 0 {
		sqlText = fmt.Sprintf("SELECT * FROM (%s) AS q LIMIT %d", sqlText, request.RowLimit)
	}

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, fmt.Errorf("query columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return query.Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, fmt.Errorf("iterate rows: %w", err)
	}

	return query.Result{
		Columns:  columns,
		Rows:     resultRows,
		Duration: time.Since(start),
	}, nil
}

// loadTableSQL materializes the parquet file under the table's SQL column names.
func loadTableSQL(tableName, localPath string, columns []string) string {
	names := query.ColumnNames(columns)
	projections := make([]string, 0, len(names))
	for i, name := range names {
		projections = append(projections, fmt.Sprintf("%s AS %s", quoteIdent(fmt.Sprintf("c%d", i)), quoteIdent(name)))
	}
	return fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS SELECT %s FROM read_parquet(%s)`,
		quoteIdent(tableName), strings.Join(projections, ", "), quoteString(localPath))
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func quoteString(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}

func sanitizeFileComponent(value string) string {
	value = strings.ReplaceAll(value, "/", "_")
	value = strings.ReplaceAll(value, "..", "_")
	if value == "" {
		return "table"
	}
	return value
}
