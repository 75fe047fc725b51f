// Package chat owns conversation sessions: the caller identity, the table
// loaded for it, and the ordered transcript of questions and answers.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/siadai/siadchat/internal/fetch"
	"github.com/siadai/siadchat/internal/table"
)

// NoticeNoData is shown whenever a load leaves the session without rows.
const NoticeNoData = "Não foi possível carregar dados das APIs. Verifique as URLs e tente novamente."

var ErrEmptyMessage = errors.New("message is required")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Entry struct {
	Role    Role      `json:"role"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Responder answers one question about a table. It never fails.
type Responder interface {
	Respond(ctx context.Context, t table.Table, question string) string
}

type Session struct {
	id        string
	identity  fetch.Identity
	createdAt time.Time
	now       func() time.Time

	mu       sync.Mutex
	table    table.Table
	notices  []string
	history  []Entry
	loadedAt time.Time
}

// View is a point-in-time copy of a session, safe to serialize.
type View struct {
	ID        string         `json:"id"`
	Identity  fetch.Identity `json:"identity"`
	CreatedAt time.Time      `json:"created_at"`
	LoadedAt  time.Time      `json:"loaded_at"`
	Table     table.Table    `json:"table"`
	Notices   []string       `json:"notices"`
	History   []Entry        `json:"history"`
}

func newSession(id string, identity fetch.Identity, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		id:        id,
		identity:  identity,
		createdAt: now().UTC(),
		now:       now,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Identity() fetch.Identity {
	return s.identity
}

// Load fetches a fresh table for the session identity and replaces the
// previous one. History is kept.
func (s *Session) Load(ctx context.Context, fetcher fetch.Fetcher) fetch.Result {
	result := fetcher.Fetch(ctx, s.identity)
	notices := append([]string(nil), result.Notices...)
	if result.Table.IsEmpty() {
		notices = append(notices, NoticeNoData)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = result.Table
	s.notices = notices
	s.loadedAt = s.now().UTC()
	return fetch.Result{Table: result.Table, Notices: notices}
}

// Ask answers message against the loaded table and appends the user entry
// followed by the assistant entry.
func (s *Session) Ask(ctx context.Context, responder Responder, message string) (Entry, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Entry{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	asked := Entry{Role: RoleUser, Message: message, At: s.now().UTC()}
	answer := responder.Respond(ctx, s.table, message)
	replied := Entry{Role: RoleAssistant, Message: answer, At: s.now().UTC()}
	s.history = append(s.history, asked, replied)
	return replied, nil
}

func (s *Session) Table() table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Entries returns a copy of the transcript in the order it was written.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.history...)
}

// Reset clears the transcript. Identity, table and notices are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

func (s *Session) View(previewRows int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:        s.id,
		Identity:  s.identity,
		CreatedAt: s.createdAt,
		LoadedAt:  s.loadedAt,
		Table:     s.table.Preview(previewRows),
		Notices:   append([]string(nil), s.notices...),
		History:   append([]Entry(nil), s.history...),
	}
}
