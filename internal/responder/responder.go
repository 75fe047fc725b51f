// Package responder routes a user question to a canned reply or to the
// question-answering engine, and post-processes what the engine returns.
package responder

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/siadai/siadchat/internal/dataqa"
	"github.com/siadai/siadchat/internal/observability"
	"github.com/siadai/siadchat/internal/table"
)

const (
	ReplyIdentity         = "Olá! Eu sou o Siad.AI, o assistente que responde perguntas sobre seus pedidos, vendas e notas fiscais. Como posso ajudar?"
	ReplyInsufficientData = "Não há dados suficientes para responder a essa pergunta."
	ReplyNoSuitableAnswer = "Não foi possível encontrar uma resposta adequada para a sua pergunta."
	ReplyEmptyAnswer      = "Desculpe, não consegui encontrar uma resposta."
	replyEngineError      = "Desculpe, ocorreu um erro ao processar sua pergunta: "

	// DefaultPromptPrefix asks the engine to answer in Portuguese.
	DefaultPromptPrefix = "Responda em português: "
)

type Outcome string

const (
	OutcomeIdentity         Outcome = "identity"
	OutcomeInsufficientData Outcome = "insufficient_data"
	OutcomeNoAnswer         Outcome = "no_answer"
	OutcomeEmptyAnswer      Outcome = "empty_answer"
	OutcomeAnswered         Outcome = "answered"
	OutcomeEngineError      Outcome = "engine_error"
)

// EngineError is the failure variant of a delegated question. Only its
// description reaches the user.
type EngineError struct {
	Description string
}

func (e *EngineError) Error() string {
	return e.Description
}

type Reply struct {
	Text    string
	Outcome Outcome
	Err     *EngineError
}

type Config struct {
	Engine       dataqa.Engine
	Rules        []Rule
	PromptPrefix string
	Logger       *slog.Logger
}

type Responder struct {
	engine       dataqa.Engine
	rules        []Rule
	promptPrefix string
	logger       *slog.Logger
}

// New builds a Responder. Nil Rules means DefaultRules; an empty PromptPrefix
// means DefaultPromptPrefix.
func New(cfg Config) *Responder {
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	prefix := cfg.PromptPrefix
	if prefix == "" {
		prefix = DefaultPromptPrefix
	}
	engine := cfg.Engine
	if engine == nil {
		engine = dataqa.Unavailable{}
	}
	return &Responder{
		engine:       engine,
		rules:        append([]Rule(nil), rules...),
		promptPrefix: prefix,
		logger:       cfg.Logger,
	}
}

// Respond returns the answer text for question. It never fails: engine errors
// become a fixed message carrying the error description.
func (r *Responder) Respond(ctx context.Context, t table.Table, question string) string {
	return r.RespondWithOutcome(ctx, t, question).Text
}

func (r *Responder) RespondWithOutcome(ctx context.Context, t table.Table, question string) Reply {
	reply := r.route(ctx, t, question)
	observability.ObserveResponderOutcome(string(reply.Outcome))
	if r.logger != nil {
		attrs := []any{
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("outcome", string(reply.Outcome)),
		}
		if reply.Err != nil {
			r.logger.WarnContext(ctx, "question engine failed", append(attrs, slog.String("error", reply.Err.Description))...)
		} else {
			r.logger.DebugContext(ctx, "question answered", attrs...)
		}
	}
	return reply
}

func (r *Responder) route(ctx context.Context, t table.Table, question string) Reply {
	lowered := strings.ToLower(question)
	for _, rule := range r.rules {
		if rule.Match != nil && rule.Match(lowered, t) {
			return Reply{Text: rule.Reply, Outcome: rule.Outcome}
		}
	}

	raw, err := r.ask(ctx, t, question)
	if err != nil {
		return Reply{
			Text:    replyEngineError + html.EscapeString(err.Description),
			Outcome: OutcomeEngineError,
			Err:     err,
		}
	}
	return postProcess(raw)
}

func (r *Responder) ask(ctx context.Context, t table.Table, question string) (answer string, engineErr *EngineError) {
	defer func() {
		if recovered := recover(); recovered != nil {
			engineErr = &EngineError{Description: fmt.Sprint(recovered)}
		}
	}()
	answer, err := r.engine.Ask(ctx, t, r.promptPrefix+question)
	if err != nil {
		return "", &EngineError{Description: err.Error()}
	}
	return answer, nil
}

func postProcess(raw string) Reply {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(trimmed, "nan"), strings.EqualFold(trimmed, "none"):
		return Reply{Text: ReplyNoSuitableAnswer, Outcome: OutcomeNoAnswer}
	case trimmed == "":
		return Reply{Text: ReplyEmptyAnswer, Outcome: OutcomeEmptyAnswer}
	default:
		return Reply{Text: Linkify(trimmed), Outcome: OutcomeAnswered}
	}
}

var urlPattern = regexp.MustCompile(`https?://[^\s\p{Z}]+`)

// Linkify HTML-escapes text and wraps every http(s) URL in an anchor that
// opens in a new tab.
func Linkify(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		escaped := html.EscapeString(text[loc[0]:loc[1]])
		b.WriteString(`<a href="` + escaped + `" target="_blank" rel="noopener noreferrer">` + escaped + `</a>`)
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
