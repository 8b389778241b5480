package clients

import (
	"context"
	"errors"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthProbe checks that the coffee api serves data this app can decode.
// Nil clients are skipped.
type HealthProbe struct {
	Name    string
	Catalog *CatalogClient
	Orders  *OrderClient
}

type HealthResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	Coffees    int    `json:"coffees"`
	Orders     int    `json:"orders"`
	LatencyMS  int64  `json:"latencyMs"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CheckHealth lists the menu and the order history. The upstream only counts
// as healthy when both decode; an empty menu is reported as a failure.
func CheckHealth(ctx context.Context, probe HealthProbe) (res HealthResult) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	res.Name = probe.Name
	start := time.Now()
	defer func() { res.LatencyMS = time.Since(start).Milliseconds() }()

	if probe.Catalog != nil {
		coffees, err := probe.Catalog.ListCoffees(ctx)
		if err != nil {
			return res.failed(err)
		}
		if len(coffees) == 0 {
			return res.failed(errors.New("menu is empty"))
		}
		res.Coffees = len(coffees)
	}
	if probe.Orders != nil {
		orders, err := probe.Orders.ListOrders(ctx)
		if err != nil {
			return res.failed(err)
		}
		res.Orders = len(orders)
	}

	res.OK = true
	return res
}

func (r HealthResult) failed(err error) HealthResult {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		r.StatusCode = upstream.StatusCode
	}
	r.Error = err.Error()
	return r
}
