package clients

import (
	"context"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

type CatalogClient struct{ c *Client }

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

// ListCoffees returns the full menu, unfiltered.
func (cc *CatalogClient) ListCoffees(ctx context.Context) ([]coffee.Coffee, error) {
	var out []coffee.Coffee
	if err := cc.c.getJSON(ctx, OpListCoffees, "/coffees", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []coffee.Coffee{}
	}
	return out, nil
}
