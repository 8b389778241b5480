package clients

import (
	"context"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

// ListOrders returns every stored order, current and legacy shaped, in
// whatever order the resource keeps them.
func (oc *OrderClient) ListOrders(ctx context.Context) ([]coffee.HistoryEntry, error) {
	var out []coffee.HistoryEntry
	if err := oc.c.getJSON(ctx, OpListOrders, "/orders", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PlaceOrder posts o and returns the stored order with its assigned id.
func (oc *OrderClient) PlaceOrder(ctx context.Context, o coffee.NewOrder) (coffee.Order, error) {
	var created coffee.Order
	if err := oc.c.postJSON(ctx, OpPlaceOrder, "/orders", o, &created); err != nil {
		return coffee.Order{}, err
	}
	return created, nil
}
