// Package siadctl is the terminal client for the chat API.
package siadctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// Run executes one command line and returns the process exit code.
func Run(ctx context.Context, args []string, defaults Options) int {
	cmd := NewRootCommand(defaults)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Erro: %v\n", err)
		var usage *usageError
		if errors.As(err, &usage) {
			return 2
		}
		return 1
	}
	return 0
}

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func NewRootCommand(defaults Options) *cobra.Command {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	stdin := defaults.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	var baseURL string
	var timeout time.Duration
	newClient := func() *client {
		httpClient := defaults.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: timeout}
		}
		return &client{baseURL: baseURL, http: httpClient}
	}

	root := &cobra.Command{
		Use:           "siadctl",
		Short:         "Terminal client for the Siad.AI chat API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	root.PersistentFlags().StringVar(&baseURL, "base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "chat API base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", durationOr(defaults.Timeout, 90*time.Second), "HTTP timeout (e.g. 90s)")

	root.AddCommand(
		newStatusCommand("health", "/v1/health", newClient),
		newStatusCommand("ready", "/v1/ready", newClient),
		newAskCommand(newClient),
		newChatCommand(newClient),
	)
	root.Args = func(_ *cobra.Command, args []string) error {
		if len(args) > 0 {
			return &usageError{err: fmt.Errorf("unknown command %q", args[0])}
		}
		return nil
	}
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		_ = cmd.Usage()
		return &usageError{err: errors.New("a command is required")}
	}
	return root
}

func newStatusCommand(name, path string, newClient func() *client) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: "GET " + path,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := newClient().do(cmd.Context(), http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			if pretty, ok := prettyJSON(raw); ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), pretty)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(raw)))
			return nil
		},
	}
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
