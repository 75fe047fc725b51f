package dataqa

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/siadai/siadchat/internal/nl2sql"
	"github.com/siadai/siadchat/internal/query"
	"github.com/siadai/siadchat/internal/table"
)

type fakeTranslator struct {
	requests []nl2sql.Request
	result   nl2sql.Result
	err      error
}

func (f *fakeTranslator) Translate(_ context.Context, req nl2sql.Request) (nl2sql.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nl2sql.Result{}, f.err
	}
	return f.result, nil
}

type fakeQueryEngine struct {
	requests []query.Request
	result   query.Result
	err      error
}

func (f *fakeQueryEngine) Execute(_ context.Context, req query.Request) (query.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return query.Result{}, f.err
	}
	return f.result, nil
}

func ordersTable() table.Table {
	return table.Table{
		Columns: []string{"pedido", "valor"},
		Rows: []table.Row{
			{"pedido": float64(1), "valor": 10.0},
			{"pedido": float64(2), "valor": 20.0},
		},
	}
}

func TestAskTranslatesThenExecutes(t *testing.T) {
	translator := &fakeTranslator{result: nl2sql.Result{SQL: `SELECT SUM("valor") FROM dados`}}
	queryEngine := &fakeQueryEngine{result: query.Result{Columns: []string{"sum"}, Rows: [][]any{{30.0}}}}
	engine, err := NewSQLEngine(SQLEngineConfig{Translator: translator, Query: queryEngine, SampleRows: 1, RowLimit: 50})
	if err != nil {
		t.Fatalf("NewSQLEngine() error = %v", err)
	}

	answer, err := engine.Ask(context.Background(), ordersTable(), "Responda em português: qual o total?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer != "30" {
		t.Fatalf("Ask() = %q", answer)
	}
	if len(translator.requests) != 1 {
		t.Fatalf("translator requests = %d", len(translator.requests))
	}
	ctx := translator.requests[0].Table
	if ctx.TableName != "dados" || ctx.RowCount != 2 || len(ctx.SampleRows) != 1 {
		t.Fatalf("table context = %#v", ctx)
	}
	if len(queryEngine.requests) != 1 || queryEngine.requests[0].RowLimit != 50 {
		t.Fatalf("query requests = %#v", queryEngine.requests)
	}
}

func TestAskDescribesTableUnderSQLColumnNames(t *testing.T) {
	translator := &fakeTranslator{result: nl2sql.Result{SQL: "SELECT 1"}}
	queryEngine := &fakeQueryEngine{result: query.Result{Columns: []string{"x"}, Rows: [][]any{{int64(1)}}}}
	engine, err := NewSQLEngine(SQLEngineConfig{Translator: translator, Query: queryEngine})
	if err != nil {
		t.Fatalf("NewSQLEngine() error = %v", err)
	}
	mixed := table.Table{
		Columns: []string{"", "id", "ID"},
		Rows:    []table.Row{{"": "x", "id": float64(1), "ID": float64(2)}},
	}
	if _, err := engine.Ask(context.Background(), mixed, "x"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	got := translator.requests[0].Table.Columns
	if strings.Join(got, ",") != "valor,id,ID_2" {
		t.Fatalf("table context columns = %#v", got)
	}
}

func TestAskWrapsFailures(t *testing.T) {
	translator := &fakeTranslator{err: errors.New("quota exceeded")}
	engine, err := NewSQLEngine(SQLEngineConfig{Translator: translator, Query: &fakeQueryEngine{}})
	if err != nil {
		t.Fatalf("NewSQLEngine() error = %v", err)
	}
	if _, err := engine.Ask(context.Background(), ordersTable(), "x"); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("Ask() error = %v", err)
	}

	engine, err = NewSQLEngine(SQLEngineConfig{
		Translator: &fakeTranslator{result: nl2sql.Result{SQL: "SELECT x"}},
		Query:      &fakeQueryEngine{err: errors.New("column x not found")},
	})
	if err != nil {
		t.Fatalf("NewSQLEngine() error = %v", err)
	}
	if _, err := engine.Ask(context.Background(), ordersTable(), "x"); err == nil || !strings.Contains(err.Error(), "column x not found") {
		t.Fatalf("Ask() error = %v", err)
	}
}

func TestNewSQLEngineRequiresDependencies(t *testing.T) {
	if _, err := NewSQLEngine(SQLEngineConfig{Query: &fakeQueryEngine{}}); err == nil {
		t.Fatal("expected error without translator")
	}
	if _, err := NewSQLEngine(SQLEngineConfig{Translator: &fakeTranslator{}}); err == nil {
		t.Fatal("expected error without query engine")
	}
}

func TestRender(t *testing.T) {
	cases := []struct {
		name   string
		result query.Result
		want   string
	}{
		{"no rows", query.Result{Columns: []string{"a"}}, "None"},
		{"null cell", query.Result{Columns: []string{"a"}, Rows: [][]any{{nil}}}, "None"},
		{"nan cell", query.Result{Columns: []string{"a"}, Rows: [][]any{{math.NaN()}}}, "nan"},
		{"text cell", query.Result{Columns: []string{"a"}, Rows: [][]any{{"https://x.com/nf.pdf"}}}, "https://x.com/nf.pdf"},
		{"integer", query.Result{Columns: []string{"a"}, Rows: [][]any{{int64(7)}}}, "7"},
		{
			"table",
			query.Result{Columns: []string{"pedido", "status"}, Rows: [][]any{{int64(1), "aberto"}, {int64(2), nil}}},
			"pedido | status\n1 | aberto\n2 | None",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(tc.result); got != tc.want {
				t.Fatalf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatValueDates(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if got := FormatValue(day); got != "2024-03-05" {
		t.Fatalf("FormatValue(day) = %q", got)
	}
}

func TestUnavailableAlwaysFails(t *testing.T) {
	if _, err := (Unavailable{}).Ask(context.Background(), ordersTable(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Ask() error = %v", err)
	}
}
