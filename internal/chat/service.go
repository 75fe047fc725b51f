package chat

import (
	"context"
	"log/slog"

	"github.com/siadai/siadchat/internal/fetch"
	"github.com/siadai/siadchat/internal/observability"
)

// Service wires sessions to the fetcher and the responder.
type Service struct {
	Store     *Store
	Fetcher   fetch.Fetcher
	Responder Responder
	Logger    *slog.Logger
}

// Start opens a session for identity and loads its table once.
func (s *Service) Start(ctx context.Context, identity fetch.Identity) *Session {
	session := s.Store.Create(identity)
	result := session.Load(ctx, s.Fetcher)
	s.logLoad(ctx, session, result)
	return session
}

// Reload replaces the table of an existing session.
func (s *Service) Reload(ctx context.Context, id string) (*Session, error) {
	session, err := s.Store.Get(id)
	if err != nil {
		return nil, err
	}
	result := session.Load(ctx, s.Fetcher)
	s.logLoad(ctx, session, result)
	return session, nil
}

func (s *Service) Session(id string) (*Session, error) {
	return s.Store.Get(id)
}

func (s *Service) Ask(ctx context.Context, id, message string) (*Session, Entry, error) {
	session, err := s.Store.Get(id)
	if err != nil {
		return nil, Entry{}, err
	}
	entry, err := session.Ask(ctx, s.Responder, message)
	if err != nil {
		return session, Entry{}, err
	}
	return session, entry, nil
}

// Reset clears the transcript of a session without reloading its table.
func (s *Service) Reset(id string) (*Session, error) {
	session, err := s.Store.Get(id)
	if err != nil {
		return nil, err
	}
	session.Reset()
	return session, nil
}

func (s *Service) End(id string) error {
	return s.Store.Delete(id)
}

func (s *Service) logLoad(ctx context.Context, session *Session, result fetch.Result) {
	if s.Logger == nil {
		return
	}
	s.Logger.InfoContext(ctx, "session data loaded",
		slog.String("trace_id", observability.TraceIDFromContext(ctx)),
		slog.String("session_id", session.ID()),
		slog.Int("rows", result.Table.Len()),
		slog.Int("columns", len(result.Table.Columns)),
		slog.Int("notices", len(result.Notices)),
	)
}
