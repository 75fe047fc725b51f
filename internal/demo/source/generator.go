package source

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Customer is one registered buyer of the demo source.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	TaxID string `json:"cnpj"`
	Email string `json:"email"`
}

// Order mirrors the shape of the order status payload.
type Order struct {
	Number    int64   `json:"pedido"`
	Customer  string  `json:"cliente"`
	IssuedAt  string  `json:"data_emissao"`
	Status    string  `json:"situacao"`
	Product   string  `json:"produto"`
	Quantity  int     `json:"quantidade"`
	UnitPrice float64 `json:"valor_unitario"`
	Total     float64 `json:"valor_total"`
	Invoice   string  `json:"nota_fiscal,omitempty"`
	Tracking  string  `json:"rastreio,omitempty"`
}

type Generator struct {
	rnd      *rand.Rand
	sequence int64
	now      func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Orders returns count orders for customer, issued over the last 90 days.
func (g *Generator) Orders(customer Customer, count int) []Order {
	orders := make([]Order, 0, count)
	for i := 0; i < count; i++ {
		orders = append(orders, g.nextOrder(customer))
	}
	return orders
}

func (g *Generator) nextOrder(customer Customer) Order {
	g.sequence++
	issuedAt := g.now().AddDate(0, 0, -g.rnd.Intn(90))
	status := g.pickStatus()
	product := pickOne(g.rnd, []string{"Cabo HDMI 2m", "Mouse sem fio", "Teclado ABNT2", "Monitor 24\"", "Nobreak 1200VA", "SSD 480GB"})
	quantity := g.rnd.Intn(20) + 1
	unitPrice := round2(15 + g.rnd.Float64()*985)

	order := Order{
		Number:    10000 + g.sequence,
		Customer:  customer.ID,
		IssuedAt:  issuedAt.Format("2006-01-02"),
		Status:    status,
		Product:   product,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     round2(unitPrice * float64(quantity)),
	}
	if status == "Faturado" || status == "Entregue" {
		order.Invoice = fmt.Sprintf("NF-%06d", g.rnd.Intn(1000000))
	}
	if status == "Entregue" {
		order.Tracking = fmt.Sprintf("https://rastreio.exemplo.com.br/%s", order.Invoice)
	}
	return order
}

func (g *Generator) pickStatus() string {
	p := g.rnd.Intn(100)
	switch {
	case p < 20:
		return "Em digitação"
	case p < 45:
		return "Liberado"
	case p < 70:
		return "Faturado"
	case p < 95:
		return "Entregue"
	default:
		return "Cancelado"
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
