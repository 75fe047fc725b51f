package source

import (
	"fmt"
	"strconv"
	"strings"
)

type LookupFunc func(string) (string, bool)

type Config struct {
	Address           string
	Seed              int64
	OrdersPerCustomer int
	Customers         []Customer
}

func DefaultConfig() Config {
	return Config{
		Address:           ":8090",
		Seed:              42,
		OrdersPerCustomer: 25,
		Customers: []Customer{
			{ID: "1001", Name: "Comercial Exemplo Ltda", TaxID: "12345678000190", Email: "compras@exemplo.com.br"},
			{ID: "1002", Name: "Distribuidora Modelo SA", TaxID: "98765432000110", Email: "financeiro@modelo.com.br"},
		},
	}
}

func LoadConfigFromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := DefaultConfig()
	if raw, ok := lookup("SIAD_DEMO_ADDR"); ok {
		cfg.Address = strings.TrimSpace(raw)
	}
	if err := applyInt64(lookup, "SIAD_DEMO_SEED", &cfg.Seed); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "SIAD_DEMO_ORDERS_PER_CUSTOMER", &cfg.OrdersPerCustomer); err != nil {
		return Config{}, err
	}
	if raw, ok := lookup("SIAD_DEMO_CUSTOMERS"); ok && strings.TrimSpace(raw) != "" {
		customers, err := parseCustomers(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Customers = customers
	}

	if cfg.Address == "" {
		return Config{}, fmt.Errorf("SIAD_DEMO_ADDR is required")
	}
	if cfg.OrdersPerCustomer <= 0 {
		return Config{}, fmt.Errorf("SIAD_DEMO_ORDERS_PER_CUSTOMER must be > 0")
	}
	return cfg, nil
}

// parseCustomers reads "cnpj:email,cnpj:email" and numbers customers from 1001.
func parseCustomers(raw string) ([]Customer, error) {
	var customers []Customer
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		taxID, email, ok := strings.Cut(item, ":")
		taxID, email = strings.TrimSpace(taxID), strings.TrimSpace(email)
		if !ok || taxID == "" || email == "" {
			return nil, fmt.Errorf("invalid SIAD_DEMO_CUSTOMERS entry %q: want cnpj:email", item)
		}
		id := strconv.Itoa(1001 + len(customers))
		customers = append(customers, Customer{ID: id, Name: "Cliente " + id, TaxID: taxID, Email: email})
	}
	if len(customers) == 0 {
		return nil, fmt.Errorf("SIAD_DEMO_CUSTOMERS has no entries")
	}
	return customers, nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}
