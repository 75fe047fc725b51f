// Package source serves a deterministic stand-in for the customer order APIs
// so the chat server can run without the production endpoints.
package source

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type Server struct {
	customers []Customer
	orders    map[string][]Order
	logger    *slog.Logger
}

// NewServer generates every customer's orders up front from cfg.Seed.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	generator := NewGenerator(cfg.Seed)
	orders := make(map[string][]Order, len(cfg.Customers))
	for _, customer := range cfg.Customers {
		orders[customer.ID] = generator.Orders(customer, cfg.OrdersPerCustomer)
	}
	return &Server{customers: append([]Customer(nil), cfg.Customers...), orders: orders, logger: logger}
}

// Handler exposes:
//
//	GET /api/busca_cli?empresa=&cnpj=&email=  customer lookup
//	GET /api/sitpedido?cliente=               orders of one customer
//	GET /api/pedidos                          orders of every customer
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/busca_cli", s.handleLookup)
	mux.HandleFunc("GET /api/sitpedido", s.handleOrders)
	mux.HandleFunc("GET /api/pedidos", s.handleAllOrders)
	return mux
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	taxID := digits(r.URL.Query().Get("cnpj"))
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))

	matches := []Customer{}
	for _, customer := range s.customers {
		if digits(customer.TaxID) == taxID && strings.ToLower(customer.Email) == email {
			matches = append(matches, customer)
		}
	}
	s.log(r, "lookup", len(matches))
	writeDados(w, matches)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	orders, ok := s.orders[strings.TrimSpace(r.URL.Query().Get("cliente"))]
	if !ok {
		orders = []Order{}
	}
	s.log(r, "orders", len(orders))
	writeDados(w, orders)
}

func (s *Server) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	all := []Order{}
	for _, customer := range s.customers {
		all = append(all, s.orders[customer.ID]...)
	}
	s.log(r, "all_orders", len(all))
	writeDados(w, all)
}

func (s *Server) log(r *http.Request, route string, rows int) {
	if s.logger == nil {
		return
	}
	s.logger.InfoContext(r.Context(), "demo source request",
		slog.String("route", route),
		slog.String("query", r.URL.RawQuery),
		slog.Int("rows", rows),
	)
}

func writeDados(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{"dados": value})
}

func digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
