package dto

import (
	"time"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
	"github.com/LefterisXris/brew-bean-app/internal/history"
)

// OrderRow is one history entry flattened for display; legacy orders show
// up with a single line.
type OrderRow struct {
	ID           int                 `json:"id"`
	Kind         string              `json:"kind"`
	OrderDate    string              `json:"orderDate"`
	DisplayDate  string              `json:"displayDate"`
	CustomerName string              `json:"customerName"`
	Lines        []coffee.BasketItem `json:"lines"`
	TotalPrice   float64             `json:"totalPrice"`
	PaymentInfo  *coffee.PaymentInfo `json:"paymentInfo,omitempty"`
}

type OrdersResponse struct {
	Orders     []OrderRow `json:"orders"`
	TotalSpent float64    `json:"totalSpent"`
}

func NewOrdersResponse(v history.View, loc *time.Location) OrdersResponse {
	rows := make([]OrderRow, 0, len(v.Orders))
	for _, e := range v.Orders {
		rows = append(rows, OrderRow{
			ID:           e.ID(),
			Kind:         e.Kind.String(),
			OrderDate:    e.OrderDate(),
			DisplayDate:  history.FormatDate(e, loc),
			CustomerName: e.CustomerName(),
			Lines:        e.Lines(),
			TotalPrice:   e.TotalPrice(),
			PaymentInfo:  e.Payment(),
		})
	}
	return OrdersResponse{Orders: rows, TotalSpent: v.TotalSpent}
}
