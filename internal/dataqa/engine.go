// Package dataqa answers a natural-language question about a table by asking
// a language model for SQL and running that SQL against the table.
package dataqa

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/siadai/siadchat/internal/nl2sql"
	"github.com/siadai/siadchat/internal/observability"
	"github.com/siadai/siadchat/internal/query"
	"github.com/siadai/siadchat/internal/table"
)

// NoValue is the text form of an answer that carries no value.
const NoValue = "None"

// Engine is the question-answering capability the responder delegates to.
type Engine interface {
	Ask(ctx context.Context, t table.Table, prompt string) (string, error)
}

type SQLEngineConfig struct {
	Translator nl2sql.Translator
	Query      query.Engine
	TableName  string
	SampleRows int
	RowLimit   int
	Logger     *slog.Logger
}

type SQLEngine struct {
	translator nl2sql.Translator
	query      query.Engine
	tableName  string
	sampleRows int
	rowLimit   int
	logger     *slog.Logger
}

func NewSQLEngine(cfg SQLEngineConfig) (*SQLEngine, error) {
	if cfg.Translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if cfg.Query == nil {
		return nil, fmt.Errorf("query engine is required")
	}
	tableName := strings.TrimSpace(cfg.TableName)
	if tableName == "" {
		tableName = query.DefaultTableName
	}
	sampleRows := cfg.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	return &SQLEngine{
		translator: cfg.Translator,
		query:      cfg.Query,
		tableName:  tableName,
		sampleRows: sampleRows,
		rowLimit:   cfg.RowLimit,
		logger:     cfg.Logger,
	}, nil
}

func (e *SQLEngine) Ask(ctx context.Context, t table.Table, prompt string) (string, error) {
	start := time.Now()
	defer func() { observability.ObserveEngineLatency(time.Since(start)) }()

	translated, err := e.translator.Translate(ctx, nl2sql.Request{
		NaturalLanguage: prompt,
		Table: nl2sql.TableContext{
			TableName:  e.tableName,
			Columns:    query.ColumnNames(t.Columns),
			SampleRows: t.Preview(e.sampleRows).Matrix(),
			RowCount:   t.Len(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("translate question: %w", err)
	}
	if e.logger != nil {
		e.logger.DebugContext(ctx, "question translated",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("model", translated.Model),
			slog.String("sql", translated.SQL),
		)
	}

	result, err := e.query.Execute(ctx, query.Request{
		SQL:       translated.SQL,
		RowLimit:  e.rowLimit,
		TableName: e.tableName,
		Table:     t,
	})
	if err != nil {
		return "", fmt.Errorf("run generated query: %w", err)
	}
	return Render(result), nil
}

// Render turns a query result into answer text. A single cell is returned as
// its value; an empty result or a NULL cell becomes NoValue; anything larger is
// rendered as a pipe-separated table.
func Render(result query.Result) string {
	if len(result.Rows) == 0 || len(result.Columns) == 0 {
		return NoValue
	}
	if len(result.Rows) == 1 && len(result.Columns) == 1 {
		return FormatValue(result.Rows[0][0])
	}

	var b strings.Builder
	b.WriteString(strings.Join(result.Columns, " | "))
	for _, row := range result.Rows {
		b.WriteString("\n")
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = FormatValue(value)
		}
		b.WriteString(strings.Join(cells, " | "))
	}
	return b.String()
}

func FormatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return NoValue
	case string:
		return typed
	case float64:
		if math.IsNaN(typed) {
			return "nan"
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return FormatValue(float64(typed))
	case bool:
		return strconv.FormatBool(typed)
	case time.Time:
		if typed.Hour() == 0 && typed.Minute() == 0 && typed.Second() == 0 && typed.Nanosecond() == 0 {
			return typed.Format("2006-01-02")
		}
		return typed.Format(time.RFC3339)
	default:
		return fmt.Sprint(typed)
	}
}
