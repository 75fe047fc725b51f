package siadctl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var quitWords = []string{"sair", "exit", "quit"}

type identityFlags struct {
	taxID string
	email string
}

func (f *identityFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.taxID, "cnpj", "", "customer tax id (CNPJ)")
	cmd.Flags().StringVar(&f.email, "email", "", "customer e-mail")
	_ = cmd.MarkFlagRequired("cnpj")
	_ = cmd.MarkFlagRequired("email")
}

type sessionView struct {
	ID    string `json:"id"`
	Table struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	} `json:"table"`
	Notices []string `json:"notices"`
}

type messageReply struct {
	Reply struct {
		Message string `json:"message"`
	} `json:"reply"`
}

func newAskCommand(newClient func() *client) *cobra.Command {
	var identity identityFlags
	cmd := &cobra.Command{
		Use:   "ask <pergunta>",
		Short: "Ask one question through POST /chat_with_data",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			var response struct {
				Response string `json:"response"`
			}
			err := newClient().doJSON(cmd.Context(), http.MethodPost, "/chat_with_data", map[string]string{
				"cnpj":   identity.taxID,
				"email":  identity.email,
				"prompt": prompt,
			}, &response)
			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				printNotices(cmd.ErrOrStderr(), []string{notFoundMessage(apiErr.Body)})
				return err
			}
			if err != nil {
				return err
			}
			printAssistant(cmd.OutOrStdout(), response.Response)
			return nil
		},
	}
	identity.bind(cmd)
	return cmd
}

func newChatCommand(newClient func() *client) *cobra.Command {
	var identity identityFlags
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive session over the customer's data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), newClient(), identity, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	identity.bind(cmd)
	return cmd
}

func runChat(ctx context.Context, c *client, identity identityFlags, in io.Reader, out io.Writer) error {
	var session sessionView
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", map[string]string{
		"cnpj":  identity.taxID,
		"email": identity.email,
	}, &session); err != nil {
		return err
	}
	defer func() {
		_, _ = c.do(context.WithoutCancel(ctx), http.MethodDelete, "/v1/sessions/"+url.PathEscape(session.ID), nil)
	}()

	_, _ = fmt.Fprintln(out, titleStyle.Render("Siad.AI"))
	_, _ = fmt.Fprintln(out, metaStyle.Render(fmt.Sprintf("%d linha(s), %d coluna(s) carregadas. Digite \"sair\" para encerrar.", len(session.Table.Rows), len(session.Table.Columns))))
	printNotices(out, session.Notices)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if isQuit(message) {
			return nil
		}

		printUser(out, message)
		var reply messageReply
		err := c.doJSON(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(session.ID)+"/messages", map[string]string{
			"message": message,
		}, &reply)
		if err != nil {
			return err
		}
		printAssistant(out, reply.Reply.Message)
	}
}

func isQuit(message string) bool {
	lowered := strings.ToLower(message)
	for _, word := range quitWords {
		if lowered == word {
			return true
		}
	}
	return false
}

func notFoundMessage(body string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return body
}
