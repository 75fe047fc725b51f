// Package table holds the tabular shape shared by the fetcher, the responder
// and the SQL engine: ordered rows of named scalar columns.
package table

import (
	"math"
	"sort"
	"strings"

	"github.com/siadai/siadchat/internal/flatten"
)

type Row map[string]any

type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// FromRecord builds a one-row table from a flattened document. Columns are
// sorted because the record carries no field order.
func FromRecord(record flatten.Record) Table {
	columns := make([]string, 0, len(record))
	row := make(Row, len(record))
	for key, value := range record {
		columns = append(columns, key)
		row[key] = value
	}
	sort.Strings(columns)
	return Table{Columns: columns, Rows: []Row{row}}
}

// FromObjects maps an array of JSON objects to rows without flattening.
// Columns follow first-seen order; elements that are not objects are skipped.
func FromObjects(items []any) Table {
	out := Table{}
	seen := map[string]struct{}{}
	for _, item := range items {
		object, ok := item.(map[string]any)
		if !ok {
			continue
		}
		keys := make([]string, 0, len(object))
		for key := range object {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		row := make(Row, len(object))
		for _, key := range keys {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				out.Columns = append(out.Columns, key)
			}
			row[key] = object[key]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Concat appends the rows of every table in order. Columns are the union of
// all inputs in first-seen order.
func Concat(tables ...Table) Table {
	out := Table{}
	seen := map[string]struct{}{}
	for _, t := range tables {
		for _, column := range t.Columns {
			if _, ok := seen[column]; ok {
				continue
			}
			seen[column] = struct{}{}
			out.Columns = append(out.Columns, column)
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}

func (t Table) Len() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows or no columns.
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0 || len(t.Columns) == 0
}

// Value returns the cell at row i, column name. Missing cells are nil.
func (t Table) Value(i int, column string) any {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i][column]
}

// HasEmptyColumn reports whether some column is null or blank in every row.
func (t Table) HasEmptyColumn() bool {
	for _, column := range t.Columns {
		empty := true
		for i := range t.Rows {
			if !IsNull(t.Value(i, column)) {
				empty = false
				break
			}
		}
		if empty {
			return true
		}
	}
	return false
}

// Preview returns a copy holding at most n rows. n <= 0 keeps every row.
func (t Table) Preview(n int) Table {
	rows := t.Rows
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(rows)),
	}
	copy(out.Rows, rows)
	return out
}

// Matrix returns the rows as positional values following Columns.
func (t Table) Matrix() [][]any {
	out := make([][]any, 0, len(t.Rows))
	for i := range t.Rows {
		values := make([]any, len(t.Columns))
		for j, column := range t.Columns {
			values[j] = t.Value(i, column)
		}
		out = append(out, values)
	}
	return out
}

// IsNull treats nil, NaN and blank strings as missing.
func IsNull(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case float64:
		return math.IsNaN(typed)
	case float32:
		return math.IsNaN(float64(typed))
	default:
		return false
	}
}
