package coffee

import (
	"strings"
	"time"
)

// OrderDateLayout matches the ISO-8601 shape browsers emit from toISOString.
const OrderDateLayout = "2006-01-02T15:04:05.000Z07:00"

type Coffee struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type BasketItem struct {
	Coffee   Coffee `json:"coffee"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

func (it BasketItem) Subtotal() float64 {
	return it.Coffee.Price * float64(it.Quantity)
}

type Order struct {
	ID           int          `json:"id"`
	Items        []BasketItem `json:"items"`
	TotalPrice   float64      `json:"totalPrice"`
	OrderDate    string       `json:"orderDate"`
	CustomerName string       `json:"customerName"`
	PaymentInfo  *PaymentInfo `json:"paymentInfo,omitempty"`
}

// NewOrder is an Order before the remote resource has assigned its id.
type NewOrder struct {
	Items        []BasketItem `json:"items" validate:"required,min=1,dive"`
	TotalPrice   float64      `json:"totalPrice" validate:"gte=0"`
	OrderDate    string       `json:"orderDate" validate:"required"`
	CustomerName string       `json:"customerName" validate:"required"`
	PaymentInfo  *PaymentInfo `json:"paymentInfo,omitempty"`
}

// WithID attaches the identity assigned by the remote resource.
func (o NewOrder) WithID(id int) Order {
	return Order{
		ID:           id,
		Items:        o.Items,
		TotalPrice:   o.TotalPrice,
		OrderDate:    o.OrderDate,
		CustomerName: o.CustomerName,
		PaymentInfo:  o.PaymentInfo,
	}
}

// BuildOrder snapshots items into an order payload. The returned items never
// alias the input slice.
func BuildOrder(items []BasketItem, customerName string, payment *PaymentInfo, now time.Time) NewOrder {
	snapshot := make([]BasketItem, len(items))
	copy(snapshot, items)

	var p *PaymentInfo
	if payment != nil {
		cp := *payment
		p = &cp
	}

	return NewOrder{
		Items:        snapshot,
		TotalPrice:   Total(snapshot),
		OrderDate:    now.UTC().Format(OrderDateLayout),
		CustomerName: strings.TrimSpace(customerName),
		PaymentInfo:  p,
	}
}

// Total returns the sum of price × quantity over items.
func Total(items []BasketItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

// Count returns the sum of quantities over items.
func Count(items []BasketItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
