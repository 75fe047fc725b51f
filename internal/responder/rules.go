package responder

import (
	"strings"

	"github.com/siadai/siadchat/internal/table"
)

// Matcher decides whether a rule answers the question. lowered is the
// question in lower case.
type Matcher func(lowered string, t table.Table) bool

// Rule is a canned reply that short-circuits delegation when it matches.
// Rules are evaluated in order; the first match wins.
type Rule struct {
	Outcome Outcome
	Match   Matcher
	Reply   string
}

// IdentityTriggers are the phrases that ask who the assistant is.
var IdentityTriggers = []string{
	"qual é seu nome",
	"qual e seu nome",
	"qual é o seu nome",
	"qual o seu nome",
	"seu nome",
	"quem é você",
	"quem é voce",
	"quem e voce",
	"quem é vc",
	"com quem eu falo",
	"com quem estou falando",
	"com quem falo",
	"falando com",
	"como você se chama",
	"como voce se chama",
	"se chama",
}

// DefaultRules returns the identity rule followed by the insufficient-data rule.
func DefaultRules() []Rule {
	return []Rule{
		{Outcome: OutcomeIdentity, Match: ContainsAny(IdentityTriggers...), Reply: ReplyIdentity},
		{Outcome: OutcomeInsufficientData, Match: InsufficientData, Reply: ReplyInsufficientData},
	}
}

// ContainsAny matches when the lowered question contains one of the phrases.
func ContainsAny(phrases ...string) Matcher {
	lowered := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase != "" {
			lowered = append(lowered, phrase)
		}
	}
	return func(question string, _ table.Table) bool {
		for _, phrase := range lowered {
			if strings.Contains(question, phrase) {
				return true
			}
		}
		return false
	}
}

// InsufficientData matches an empty table or one with a column that is null in every row.
func InsufficientData(_ string, t table.Table) bool {
	return t.IsEmpty() || t.HasEmptyColumn()
}
