package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/siadai/siadchat/internal/flatten"
	"github.com/siadai/siadchat/internal/observability"
	"github.com/siadai/siadchat/internal/table"
)

const (
	NoticeCustomerNotFound = "Cliente não encontrado. Verifique o CNPJ e o e-mail fornecidos."
	noticeFetchFailed      = "Erro ao buscar dados da API. Erro: "
)

type LookupConfig struct {
	// LookupURL accepts the {empresa}, {cnpj} and {email} placeholders.
	LookupURL string
	// DetailURL accepts the {cliente} placeholder.
	DetailURL    string
	BusinessUnit string
	Timeout      time.Duration
	Client       *http.Client
	Logger       *slog.Logger
}

// LookupFetcher resolves the customer id from the tax id and email, then
// flattens the customer's detail payload into a single row.
type LookupFetcher struct {
	lookupURL    string
	detailURL    string
	businessUnit string
	client       *http.Client
	logger       *slog.Logger
}

func NewLookupFetcher(cfg LookupConfig) *LookupFetcher {
	return &LookupFetcher{
		lookupURL:    cfg.LookupURL,
		detailURL:    cfg.DetailURL,
		businessUnit: cfg.BusinessUnit,
		client:       newHTTPClient(cfg.Client, cfg.Timeout),
		logger:       cfg.Logger,
	}
}

func (f *LookupFetcher) Fetch(ctx context.Context, identity Identity) Result {
	lookupURL := expand(f.lookupURL, map[string]string{
		"empresa": f.businessUnit,
		"cnpj":    identity.TaxID,
		"email":   identity.Email,
	})
	doc, err := getJSON(ctx, f.client, lookupURL)
	if err != nil {
		f.observe(ctx, "lookup", err, 0)
		return Result{Notices: []string{noticeFetchFailed + err.Error()}}
	}

	customerID, ok := firstCustomerID(doc)
	if !ok {
		observability.ObserveSourceFetch("lookup", outcomeEmpty, 0)
		return Result{Notices: []string{NoticeCustomerNotFound}}
	}
	observability.ObserveSourceFetch("lookup", outcomeOK, 0)

	detailURL := expand(f.detailURL, map[string]string{"cliente": customerID})
	detail, err := getJSON(ctx, f.client, detailURL)
	if err != nil {
		f.observe(ctx, "detail", err, 0)
		return Result{Notices: []string{noticeFetchFailed + err.Error()}}
	}

	tbl := table.FromRecord(flatten.Flatten(detail))
	f.observe(ctx, "detail", nil, tbl.Len())
	return Result{Table: tbl}
}

func (f *LookupFetcher) observe(ctx context.Context, stage string, err error, rows int) {
	observability.ObserveSourceFetch(stage, classify(err), rows)
	if err != nil && f.logger != nil {
		f.logger.WarnContext(ctx, "source fetch failed",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("stage", stage),
			slog.Any("error", err),
		)
	}
}

// firstCustomerID returns dados[0].id from a lookup response.
func firstCustomerID(doc any) (string, bool) {
	value, ok := dados(doc)
	if !ok {
		return "", false
	}
	matches, ok := value.([]any)
	if !ok || len(matches) == 0 {
		return "", false
	}
	first, ok := matches[0].(map[string]any)
	if !ok {
		return "", false
	}
	return scalarText(first["id"])
}
