package responder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/siadai/siadchat/internal/table"
)

type fakeEngine struct {
	prompts []string
	answer  string
	err     error
	panics  bool
}

func (f *fakeEngine) Ask(_ context.Context, _ table.Table, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.panics {
		panic("engine exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func filledTable() table.Table {
	return table.Table{
		Columns: []string{"pedido", "valor"},
		Rows:    []table.Row{{"pedido": float64(1), "valor": 9.9}},
	}
}

func TestRespondEmptyTableSkipsEngine(t *testing.T) {
	engine := &fakeEngine{answer: "42"}
	r := New(Config{Engine: engine})

	got := r.Respond(context.Background(), table.Table{}, "qualquer coisa")
	if got != ReplyInsufficientData {
		t.Fatalf("Respond() = %q", got)
	}
	if len(engine.prompts) != 0 {
		t.Fatalf("engine calls = %d, want 0", len(engine.prompts))
	}
}

func TestRespondAllNullColumnSkipsEngine(t *testing.T) {
	engine := &fakeEngine{answer: "42"}
	r := New(Config{Engine: engine})
	tbl := table.Table{
		Columns: []string{"pedido", "obs"},
		Rows:    []table.Row{{"pedido": float64(1), "obs": nil}, {"pedido": float64(2), "obs": ""}},
	}

	reply := r.RespondWithOutcome(context.Background(), tbl, "quantos pedidos?")
	if reply.Outcome != OutcomeInsufficientData || reply.Text != ReplyInsufficientData {
		t.Fatalf("reply = %#v", reply)
	}
	if len(engine.prompts) != 0 {
		t.Fatalf("engine calls = %d, want 0", len(engine.prompts))
	}
}

func TestRespondIdentityWinsOverData(t *testing.T) {
	questions := []string{
		"Olá, Qual É seu nome?",
		"qual e seu nome",
		"e o seu nome?",
		"Quem é você?",
		"quem e voce",
		"quem é voce",
		"com quem eu falo?",
		"Com quem estou falando?",
		"Estou falando com um robô?",
		"como você se chama",
		"como voce se chama",
		"Como se chama?",
	}
	for _, question := range questions {
		for _, tbl := range []table.Table{{}, filledTable()} {
			engine := &fakeEngine{answer: "42"}
			r := New(Config{Engine: engine})

			got := r.Respond(context.Background(), tbl, question)
			if got != ReplyIdentity {
				t.Fatalf("Respond(%q) = %q", question, got)
			}
			if len(engine.prompts) != 0 {
				t.Fatalf("Respond(%q) engine calls = %d, want 0", question, len(engine.prompts))
			}
		}
	}
}

func TestRespondPrefixesPrompt(t *testing.T) {
	engine := &fakeEngine{answer: "  R$ 9,90  "}
	r := New(Config{Engine: engine})

	reply := r.RespondWithOutcome(context.Background(), filledTable(), "qual o valor do pedido 1?")
	if reply.Outcome != OutcomeAnswered || reply.Text != "R$ 9,90" {
		t.Fatalf("reply = %#v", reply)
	}
	if len(engine.prompts) != 1 || engine.prompts[0] != "Responda em português: qual o valor do pedido 1?" {
		t.Fatalf("prompts = %#v", engine.prompts)
	}
}

func TestRespondSentinelAnswers(t *testing.T) {
	cases := []struct {
		answer  string
		want    string
		outcome Outcome
	}{
		{"None", ReplyNoSuitableAnswer, OutcomeNoAnswer},
		{" nan ", ReplyNoSuitableAnswer, OutcomeNoAnswer},
		{"NaN", ReplyNoSuitableAnswer, OutcomeNoAnswer},
		{"   ", ReplyEmptyAnswer, OutcomeEmptyAnswer},
		{"", ReplyEmptyAnswer, OutcomeEmptyAnswer},
		{"Nonexistent", "Nonexistent", OutcomeAnswered},
	}
	for _, tc := range cases {
		r := New(Config{Engine: &fakeEngine{answer: tc.answer}})
		reply := r.RespondWithOutcome(context.Background(), filledTable(), "pergunta")
		if reply.Text != tc.want || reply.Outcome != tc.outcome {
			t.Fatalf("answer %q: reply = %#v", tc.answer, reply)
		}
	}
}

func TestRespondLinkifiesURLs(t *testing.T) {
	r := New(Config{Engine: &fakeEngine{answer: "Visite https://example.com/x para detalhes"}})

	got := r.Respond(context.Background(), filledTable(), "onde vejo a nota?")
	want := `Visite <a href="https://example.com/x" target="_blank" rel="noopener noreferrer">https://example.com/x</a> para detalhes`
	if got != want {
		t.Fatalf("Respond() = %q, want %q", got, want)
	}
}

func TestRespondEngineErrorBecomesMessage(t *testing.T) {
	r := New(Config{Engine: &fakeEngine{err: errors.New("rate <limit> reached")}})

	reply := r.RespondWithOutcome(context.Background(), filledTable(), "pergunta")
	if reply.Outcome != OutcomeEngineError {
		t.Fatalf("Outcome = %q", reply.Outcome)
	}
	if reply.Err == nil || reply.Err.Description != "rate <limit> reached" {
		t.Fatalf("Err = %#v", reply.Err)
	}
	if reply.Text != "Desculpe, ocorreu um erro ao processar sua pergunta: rate &lt;limit&gt; reached" {
		t.Fatalf("Text = %q", reply.Text)
	}
}

func TestRespondEnginePanicIsContained(t *testing.T) {
	r := New(Config{Engine: &fakeEngine{panics: true}})

	reply := r.RespondWithOutcome(context.Background(), filledTable(), "pergunta")
	if reply.Outcome != OutcomeEngineError || !strings.Contains(reply.Text, "engine exploded") {
		t.Fatalf("reply = %#v", reply)
	}
}

func TestRespondWithoutEngineReportsConfiguration(t *testing.T) {
	reply := New(Config{}).RespondWithOutcome(context.Background(), filledTable(), "pergunta")
	if reply.Outcome != OutcomeEngineError {
		t.Fatalf("reply = %#v", reply)
	}
}

func TestCustomRulesAreEvaluatedInOrder(t *testing.T) {
	engine := &fakeEngine{answer: "42"}
	rules := append([]Rule{{
		Outcome: "greeting",
		Match:   ContainsAny("bom dia"),
		Reply:   "Bom dia!",
	}}, DefaultRules()...)
	r := New(Config{Engine: engine, Rules: rules})

	if got := r.Respond(context.Background(), table.Table{}, "Bom dia, qual é seu nome?"); got != "Bom dia!" {
		t.Fatalf("Respond() = %q", got)
	}
	if len(engine.prompts) != 0 {
		t.Fatalf("engine calls = %d", len(engine.prompts))
	}
}

func TestLinkify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"sem links", "sem links"},
		{
			"a http://x.io/a?b=1&c=2 e https://y.io",
			`a <a href="http://x.io/a?b=1&amp;c=2" target="_blank" rel="noopener noreferrer">http://x.io/a?b=1&amp;c=2</a> e <a href="https://y.io" target="_blank" rel="noopener noreferrer">https://y.io</a>`,
		},
		{"<b>", "&lt;b&gt;"},
		{
			"Veja https://x.com/a\u00a0agora",
			"Veja <a href=\"https://x.com/a\" target=\"_blank\" rel=\"noopener noreferrer\">https://x.com/a</a>\u00a0agora",
		},
		{
			"ir https://x.com/b\u2003já",
			"ir <a href=\"https://x.com/b\" target=\"_blank\" rel=\"noopener noreferrer\">https://x.com/b</a>\u2003já",
		},
	}
	for _, tc := range cases {
		if got := Linkify(tc.in); got != tc.want {
			t.Fatalf("Linkify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
