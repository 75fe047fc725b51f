package duckdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/siadai/siadchat/internal/table"
)

type columnKind int

const (
	kindText columnKind = iota
	kindDouble
	kindBoolean
)

// encodedTable is a parquet image of a table. Parquet columns are named
// c0..cN; Columns keeps the original names in the same order.
type encodedTable struct {
	Data    []byte
	Columns []string
	Kinds   []columnKind
	Rows    int
}

// encodeTableToParquet writes every cell as an optional DOUBLE, BOOLEAN or
// VARCHAR value, choosing the narrowest type that fits all non-null cells.
func encodeTableToParquet(t table.Table) (encodedTable, error) {
	if len(t.Columns) == 0 {
		return encodedTable{}, fmt.Errorf("table has no columns")
	}

	kinds := make([]columnKind, len(t.Columns))
	fields := make([]reflect.StructField, len(t.Columns))
	for i, column := range t.Columns {
		kinds[i] = inferKind(t, column)
		fields[i] = reflect.StructField{
			Name: "C" + strconv.Itoa(i),
			Type: kindType(kinds[i]),
			Tag:  reflect.StructTag(`parquet:"c` + strconv.Itoa(i) + `"`),
		}
	}
	rowType := reflect.StructOf(fields)

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewWriter(buf, parquet.SchemaOf(reflect.New(rowType).Interface()))
	for rowIndex := range t.Rows {
		row := reflect.New(rowType)
		for i, column := range t.Columns {
			value, ok := convertCell(t.Value(rowIndex, column), kinds[i])
			if !ok {
				continue
			}
			row.Elem().Field(i).Set(value)
		}
		if err := writer.Write(row.Interface()); err != nil {
			return encodedTable{}, fmt.Errorf("write parquet row %d: %w", rowIndex, err)
		}
	}
	if err := writer.Close(); err != nil {
		return encodedTable{}, fmt.Errorf("close parquet writer: %w", err)
	}

	return encodedTable{
		Data:    buf.Bytes(),
		Columns: append([]string(nil), t.Columns...),
		Kinds:   kinds,
		Rows:    len(t.Rows),
	}, nil
}

func inferKind(t table.Table, column string) columnKind {
	kind := columnKind(-1)
	for i := range t.Rows {
		value := t.Value(i, column)
		if value == nil {
			continue
		}
		var current columnKind
		switch value.(type) {
		case float64, float32, int, int32, int64, json.Number:
			current = kindDouble
		case bool:
			current = kindBoolean
		default:
			return kindText
		}
		if kind >= 0 && kind != current {
			return kindText
		}
		kind = current
	}
	if kind < 0 {
		return kindText
	}
	return kind
}

func kindType(kind columnKind) reflect.Type {
	switch kind {
	case kindDouble:
		return reflect.TypeOf((*float64)(nil))
	case kindBoolean:
		return reflect.TypeOf((*bool)(nil))
	default:
		return reflect.TypeOf((*string)(nil))
	}
}

// convertCell returns a pointer value for the column's Go type. Nil cells
// report false and stay null.
func convertCell(value any, kind columnKind) (reflect.Value, bool) {
	if value == nil {
		return reflect.Value{}, false
	}
	switch kind {
	case kindDouble:
		number, ok := toFloat(value)
		if !ok {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(&number), true
	case kindBoolean:
		flag, ok := value.(bool)
		if !ok {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(&flag), true
	default:
		text := cellText(value)
		return reflect.ValueOf(&text), true
	}
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case json.Number:
		number, err := typed.Float64()
		return number, err == nil
	default:
		return 0, false
	}
}

func cellText(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case map[string]any, []any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(raw)
	default:
		if number, ok := toFloat(value); ok {
			return strconv.FormatFloat(number, 'f', -1, 64)
		}
		return fmt.Sprint(typed)
	}
}
