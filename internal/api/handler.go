package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/siadai/siadchat/internal/chat"
	"github.com/siadai/siadchat/internal/config"
	"github.com/siadai/siadchat/internal/fetch"
	"github.com/siadai/siadchat/internal/observability"
)

const maxBodyBytes = 1 << 20

type ReadinessCheck func(ctx context.Context) error

// ChatService is the session surface the handlers need.
type ChatService interface {
	Start(ctx context.Context, identity fetch.Identity) *chat.Session
	Session(id string) (*chat.Session, error)
	Reload(ctx context.Context, id string) (*chat.Session, error)
	Ask(ctx context.Context, id, message string) (*chat.Session, chat.Entry, error)
	Reset(id string) (*chat.Session, error)
	End(id string) error
}

type Dependencies struct {
	Logger           *slog.Logger
	Readiness        ReadinessCheck
	DependencyTimout time.Duration
	Chat             ChatService
	TablePreviewRows int
	UI               http.Handler
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		handleCreateSession(deps, w, r)
	})
	mux.HandleFunc("GET /v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetSession(deps, w, r)
	})
	mux.HandleFunc("POST /v1/sessions/{id}/load", func(w http.ResponseWriter, r *http.Request) {
		handleReloadSession(deps, w, r)
	})
	mux.HandleFunc("POST /v1/sessions/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		handlePostMessage(deps, w, r)
	})
	mux.HandleFunc("POST /v1/sessions/{id}/reset", func(w http.ResponseWriter, r *http.Request) {
		handleResetSession(deps, w, r)
	})
	mux.HandleFunc("DELETE /v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleDeleteSession(deps, w, r)
	})
	mux.HandleFunc("POST /chat_with_data", func(w http.ResponseWriter, r *http.Request) {
		handleChatWithData(deps, w, r)
	})

	if deps.UI != nil {
		mux.Handle("GET /{path...}", deps.UI)
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	middlewares = append(middlewares, observability.RecoverMiddleware(deps.Logger))
	return chain(mux, middlewares...)
}

// CheckSourceConfig reports whether a customer data source is configured.
func CheckSourceConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		switch cfg.Source.Mode {
		case config.SourceModeEndpoints:
			if len(cfg.Source.Endpoints) == 0 {
				return errors.New("no data endpoints are configured")
			}
		default:
			if cfg.Source.LookupURL == "" || cfg.Source.DetailURL == "" {
				return errors.New("customer lookup urls are not configured")
			}
		}
		return nil
	}
}

// CheckAIConfig reports whether questions can be delegated to the model.
func CheckAIConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.AI.APIKey == "" {
			return errors.New("language model api key is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func decodeBody(w http.ResponseWriter, r *http.Request, strict bool, into any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if strict {
		decoder.DisallowUnknownFields()
	}
	return decoder.Decode(into)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
