package nl2sql

import "context"

// TableContext describes the one table the model may query.
type TableContext struct {
	TableName  string   `json:"table_name"`
	Columns    []string `json:"columns"`
	SampleRows [][]any  `json:"sample_rows"`
	RowCount   int      `json:"row_count"`
}

type Request struct {
	NaturalLanguage string       `json:"natural_language"`
	Table           TableContext `json:"table"`
}

type Result struct {
	SQL      string `json:"sql"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}
