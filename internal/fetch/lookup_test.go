package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLookupFetcherResolvesCustomerAndFlattensDetail(t *testing.T) {
	var lookupQuery string
	var detailQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/api_busca_cli.php", func(w http.ResponseWriter, r *http.Request) {
		lookupQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"dados":[{"id":42,"nome":"ACME"},{"id":43}]}`))
	})
	mux.HandleFunc("/api_sitpedido.php", func(w http.ResponseWriter, r *http.Request) {
		detailQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"dados":[{"pedido":1,"itens":[{"sku":"A"}]}],"total":1}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewLookupFetcher(LookupConfig{
		LookupURL:    server.URL + "/api_busca_cli.php?empresa={empresa}&cnpj={cnpj}&email={email}",
		DetailURL:    server.URL + "/api_sitpedido.php?cliente={cliente}",
		BusinessUnit: "5",
	})
	result := fetcher.Fetch(context.Background(), Identity{TaxID: "12.345/0001-99", Email: "a+b@x.com"})

	if len(result.Notices) != 0 {
		t.Fatalf("Notices = %#v", result.Notices)
	}
	if !strings.Contains(lookupQuery, "empresa=5") || !strings.Contains(lookupQuery, "email=a%2Bb%40x.com") {
		t.Fatalf("lookup query = %q", lookupQuery)
	}
	if !strings.Contains(lookupQuery, "cnpj=12.345%2F0001-99") {
		t.Fatalf("lookup query = %q", lookupQuery)
	}
	if detailQuery != "cliente=42" {
		t.Fatalf("detail query = %q", detailQuery)
	}
	if result.Table.Len() != 1 {
		t.Fatalf("rows = %d", result.Table.Len())
	}
	if got := result.Table.Value(0, "dados_0_itens_0_sku"); got != "A" {
		t.Fatalf("dados_0_itens_0_sku = %#v", got)
	}
	if got := result.Table.Value(0, "total"); got != float64(1) {
		t.Fatalf("total = %#v", got)
	}
}

func TestLookupFetcherCustomerNotFound(t *testing.T) {
	detailCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/lookup", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":[]}`))
	})
	mux.HandleFunc("/detail", func(w http.ResponseWriter, r *http.Request) {
		detailCalls++
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewLookupFetcher(LookupConfig{LookupURL: server.URL + "/lookup", DetailURL: server.URL + "/detail"})
	result := fetcher.Fetch(context.Background(), Identity{TaxID: "1", Email: "e"})

	if !result.Table.IsEmpty() {
		t.Fatalf("Table = %#v", result.Table)
	}
	if len(result.Notices) != 1 || result.Notices[0] != NoticeCustomerNotFound {
		t.Fatalf("Notices = %#v", result.Notices)
	}
	if detailCalls != 0 {
		t.Fatalf("detail calls = %d", detailCalls)
	}
}

func TestLookupFetcherNetworkErrorYieldsEmptyTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	fetcher := NewLookupFetcher(LookupConfig{LookupURL: target + "/lookup", DetailURL: target + "/detail"})
	result := fetcher.Fetch(context.Background(), Identity{TaxID: "1", Email: "e"})

	if !result.Table.IsEmpty() {
		t.Fatalf("Table = %#v", result.Table)
	}
	if len(result.Notices) != 1 || !strings.HasPrefix(result.Notices[0], "Erro ao buscar dados da API. Erro: ") {
		t.Fatalf("Notices = %#v", result.Notices)
	}
}

func TestLookupFetcherDetailStatusErrorYieldsEmptyTable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/lookup", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":[{"id":"c-1"}]}`))
	})
	mux.HandleFunc("/detail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewLookupFetcher(LookupConfig{LookupURL: server.URL + "/lookup", DetailURL: server.URL + "/detail?c={cliente}"})
	result := fetcher.Fetch(context.Background(), Identity{})

	if !result.Table.IsEmpty() {
		t.Fatalf("Table = %#v", result.Table)
	}
	if len(result.Notices) != 1 || !strings.Contains(result.Notices[0], "500") {
		t.Fatalf("Notices = %#v", result.Notices)
	}
}

func TestLookupFetcherMissingDadosIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	fetcher := NewLookupFetcher(LookupConfig{LookupURL: server.URL, DetailURL: server.URL})
	result := fetcher.Fetch(context.Background(), Identity{})
	if len(result.Notices) != 1 || result.Notices[0] != NoticeCustomerNotFound {
		t.Fatalf("Notices = %#v", result.Notices)
	}
}

func TestClassify(t *testing.T) {
	if got := classify(&StatusError{StatusCode: 404}); got != outcomeHTTPError {
		t.Fatalf("classify(status) = %q", got)
	}
	if got := classify(nil); got != outcomeOK {
		t.Fatalf("classify(nil) = %q", got)
	}
}
