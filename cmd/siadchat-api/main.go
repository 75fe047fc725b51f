package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/siadai/siadchat/internal/api"
	"github.com/siadai/siadchat/internal/api/uistatic"
	"github.com/siadai/siadchat/internal/chat"
	"github.com/siadai/siadchat/internal/config"
	"github.com/siadai/siadchat/internal/dataqa"
	"github.com/siadai/siadchat/internal/fetch"
	"github.com/siadai/siadchat/internal/nl2sql"
	"github.com/siadai/siadchat/internal/observability"
	duckdbengine "github.com/siadai/siadchat/internal/query/duckdb"
	"github.com/siadai/siadchat/internal/responder"
)

func main() {
	cfg, err := config.LoadFromEnv("siadchat-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	engine, err := newDataEngine(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize data engine", slog.Any("error", err))
		os.Exit(1)
	}

	chatService := &chat.Service{
		Store:   chat.NewStore(),
		Fetcher: newFetcher(cfg, logger),
		Responder: responder.New(responder.Config{
			Engine:       engine,
			PromptPrefix: cfg.AI.AnswerPrefix,
			Logger:       logger,
		}),
		Logger: logger,
	}

	deps := api.Dependencies{
		Logger:           logger,
		Chat:             chatService,
		TablePreviewRows: cfg.UI.TablePreviewRows,
		UI:               uistatic.Handler(),
		Readiness: api.CombineReadinessChecks(
			api.CheckSourceConfig(cfg),
			api.CheckAIConfig(cfg),
		),
		DependencyTimout: time.Second,
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting chat server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("source_mode", string(cfg.Source.Mode)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("chat server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down chat server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

func newFetcher(cfg config.Config, logger *slog.Logger) fetch.Fetcher {
	if cfg.Source.Mode == config.SourceModeEndpoints {
		endpoints := make([]fetch.Endpoint, 0, len(cfg.Source.Endpoints))
		for _, endpoint := range cfg.Source.Endpoints {
			endpoints = append(endpoints, fetch.Endpoint{Name: endpoint.Name, URL: endpoint.URL})
		}
		return fetch.NewEndpointsFetcher(fetch.EndpointsConfig{
			Endpoints: endpoints,
			Timeout:   cfg.Source.Timeout,
			Logger:    logger,
		})
	}
	return fetch.NewLookupFetcher(fetch.LookupConfig{
		LookupURL:    cfg.Source.LookupURL,
		DetailURL:    cfg.Source.DetailURL,
		BusinessUnit: cfg.Source.BusinessUnit,
		Timeout:      cfg.Source.Timeout,
		Logger:       logger,
	})
}

// newDataEngine falls back to an engine that reports the missing key on
// every question, so the chat stays usable for identity and empty-data replies.
func newDataEngine(cfg config.Config, logger *slog.Logger) (dataqa.Engine, error) {
	if cfg.AI.APIKey == "" {
		logger.Warn("language model api key not configured; questions will return an error reply")
		return dataqa.Unavailable{}, nil
	}
	translator, err := nl2sql.NewOpenAITranslator(nl2sql.OpenAIConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return dataqa.NewSQLEngine(dataqa.SQLEngineConfig{
		Translator: translator,
		Query:      duckdbengine.NewEngine(),
		RowLimit:   cfg.AI.RowLimit,
		Logger:     logger,
	})
}
