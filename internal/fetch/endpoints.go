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

type Endpoint struct {
	Name string
	URL  string
}

type EndpointsConfig struct {
	Endpoints []Endpoint
	Timeout   time.Duration
	Client    *http.Client
	Logger    *slog.Logger
}

// EndpointsFetcher calls a fixed list of endpoints one after the other and
// concatenates their rows in endpoint order.
type EndpointsFetcher struct {
	endpoints []Endpoint
	client    *http.Client
	logger    *slog.Logger
}

func NewEndpointsFetcher(cfg EndpointsConfig) *EndpointsFetcher {
	return &EndpointsFetcher{
		endpoints: append([]Endpoint(nil), cfg.Endpoints...),
		client:    newHTTPClient(cfg.Client, cfg.Timeout),
		logger:    cfg.Logger,
	}
}

// Fetch ignores the identity: the endpoints carry fixed parameters.
func (f *EndpointsFetcher) Fetch(ctx context.Context, _ Identity) Result {
	var result Result
	parts := make([]table.Table, 0, len(f.endpoints))
	for _, endpoint := range f.endpoints {
		doc, err := getJSON(ctx, f.client, endpoint.URL)
		if err != nil {
			observability.ObserveSourceFetch(endpoint.Name, classify(err), 0)
			if f.logger != nil {
				f.logger.WarnContext(ctx, "source fetch failed",
					slog.String("trace_id", observability.TraceIDFromContext(ctx)),
					slog.String("endpoint", endpoint.Name),
					slog.Any("error", err),
				)
			}
			result.Notices = append(result.Notices, "Não foi possível carregar dados de "+endpoint.Name+".")
			continue
		}

		part := tableFromDados(doc)
		if part.IsEmpty() {
			observability.ObserveSourceFetch(endpoint.Name, outcomeEmpty, 0)
			continue
		}
		observability.ObserveSourceFetch(endpoint.Name, outcomeOK, part.Len())
		parts = append(parts, part)
	}
	result.Table = table.Concat(parts...)
	return result
}

// tableFromDados maps a "dados" array directly to rows. A nested document is
// flattened into one row instead.
func tableFromDados(doc any) table.Table {
	value, ok := dados(doc)
	if !ok {
		return table.Table{}
	}
	switch typed := value.(type) {
	case []any:
		return table.FromObjects(typed)
	case map[string]any:
		if len(typed) == 0 {
			return table.Table{}
		}
		return table.FromRecord(flatten.Flatten(typed))
	default:
		return table.Table{}
	}
}
