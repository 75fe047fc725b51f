// Package fetch loads customer records from the remote sales API and turns
// them into a table. A failed call never aborts the fetch; it becomes a
// notice and contributes no rows.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/siadai/siadchat/internal/flatten"
	"github.com/siadai/siadchat/internal/table"
)

const (
	outcomeOK             = "ok"
	outcomeEmpty          = "empty"
	outcomeHTTPError      = "http_error"
	outcomeDecodeError    = "decode_error"
	outcomeTransportError = "transport_error"
)

var ErrDecode = errors.New("decode response")

// Identity is the pair of caller-supplied identifiers that scopes one session.
type Identity struct {
	TaxID string `json:"cnpj"`
	Email string `json:"email"`
}

type Result struct {
	Table   table.Table `json:"table"`
	Notices []string    `json:"notices,omitempty"`
}

type Fetcher interface {
	Fetch(ctx context.Context, identity Identity) Result
}

type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s for url: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

func newHTTPClient(client *http.Client, timeout time.Duration) *http.Client {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func getJSON(ctx context.Context, client *http.Client, target string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
	}
	doc, err := flatten.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return doc, nil
}

func classify(err error) string {
	if err == nil {
		return outcomeOK
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return outcomeHTTPError
	}
	if errors.Is(err, ErrDecode) {
		return outcomeDecodeError
	}
	return outcomeTransportError
}

// dados returns the "dados" member of a response document, if any.
func dados(doc any) (any, bool) {
	object, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	value, ok := object["dados"]
	return value, ok && value != nil
}

// expand replaces {name} placeholders with query-escaped values.
func expand(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{"+key+"}", url.QueryEscape(value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func scalarText(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		trimmed := strings.TrimSpace(typed)
		return trimmed, trimmed != ""
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
