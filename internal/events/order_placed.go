package events

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

const (
	OrderPlacedEventName    = "OrderPlaced"
	OrderPlacedEventVersion = 1
	producerName            = "brew-bean"
)

type OrderPlacedItem struct {
	CoffeeID int     `json:"coffeeId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID       int               `json:"orderId"`
	CustomerName  string            `json:"customerName"`
	Items         []OrderPlacedItem `json:"items"`
	TotalPrice    float64           `json:"totalPrice"`
	PaymentMethod string            `json:"paymentMethod,omitempty"`
	TransactionID string            `json:"transactionId,omitempty"`
	OrderDate     string            `json:"orderDate"`
}

type OrderPlacedEnvelope = EventEnvelope[OrderPlacedPayload]

// BuildOrderPlacedEnvelope builds the event for an order the remote resource
// has acknowledged.
func BuildOrderPlacedEnvelope(o coffee.Order, meta EnvelopeMetadata, now time.Time) OrderPlacedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	items := make([]OrderPlacedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderPlacedItem{
			CoffeeID: it.Coffee.ID,
			Name:     it.Coffee.Name,
			Quantity: it.Quantity,
			Price:    it.Coffee.Price,
		})
	}

	payload := OrderPlacedPayload{
		OrderID:      o.ID,
		CustomerName: o.CustomerName,
		Items:        items,
		TotalPrice:   o.TotalPrice,
		OrderDate:    o.OrderDate,
	}
	if o.PaymentInfo != nil {
		payload.PaymentMethod = string(o.PaymentInfo.Method)
		payload.TransactionID = o.PaymentInfo.TransactionID
	}

	env := OrderPlacedEnvelope{
		EventName:     OrderPlacedEventName,
		EventVersion:  OrderPlacedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		Producer:      producerName,
		PartitionKey:  strconv.Itoa(o.ID),
		OccurredAt:    now.UTC(),
		Payload:       payload,
	}
	if meta.Sequence > 0 {
		seq := meta.Sequence
		env.Sequence = &seq
	}
	return env
}
