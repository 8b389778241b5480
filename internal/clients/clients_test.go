package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
	"github.com/LefterisXris/brew-bean-app/internal/middleware"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

func newStubServer(t *testing.T, status int, response string) (*httptest.Server, <-chan recordedRequest) {
	t.Helper()
	ch := make(chan recordedRequest, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ch <- recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient("coffee-api", baseURL, &http.Client{Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("coffee-api", "localhost:3000", nil)
	require.Error(t, err)

	_, err = NewClient("coffee-api", "://bad", nil)
	require.Error(t, err)
}

func TestListCoffees(t *testing.T) {
	srv, ch := newStubServer(t, http.StatusOK, `[{"id":1,"name":"Latte","price":4.5,"description":"Milky"}]`)
	cc := NewCatalogClient(newTestClient(t, srv.URL))

	ctx := middleware.WithCorrelationID(context.Background(), "cid-1")
	coffees, err := cc.ListCoffees(ctx)
	require.NoError(t, err)
	require.Len(t, coffees, 1)
	assert.Equal(t, coffee.Coffee{ID: 1, Name: "Latte", Price: 4.5, Description: "Milky"}, coffees[0])

	rec := <-ch
	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/coffees", rec.Path)
	assert.Equal(t, "cid-1", rec.Header.Get(middleware.HeaderCorrelationID))
	assert.Equal(t, "application/json", rec.Header.Get("Accept"))
}

func TestListCoffeesKeepsBasePathPrefix(t *testing.T) {
	srv, ch := newStubServer(t, http.StatusOK, `[]`)
	cc := NewCatalogClient(newTestClient(t, srv.URL+"/api"))

	coffees, err := cc.ListCoffees(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, coffees)
	assert.Equal(t, "/api/coffees", (<-ch).Path)
}

func TestListCoffeesErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv, _ := newStubServer(t, http.StatusInternalServerError, `boom`)
		cc := NewCatalogClient(newTestClient(t, srv.URL))

		_, err := cc.ListCoffees(context.Background())
		require.ErrorIs(t, err, ErrCatalogFetch)

		var upstream *UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
		assert.Equal(t, "boom", upstream.Body)
	})

	t.Run("bad json", func(t *testing.T) {
		srv, _ := newStubServer(t, http.StatusOK, `{"not":"a list"`)
		cc := NewCatalogClient(newTestClient(t, srv.URL))

		_, err := cc.ListCoffees(context.Background())
		require.ErrorIs(t, err, ErrCatalogFetch)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		cc := NewCatalogClient(newTestClient(t, url))
		_, err := cc.ListCoffees(context.Background())
		require.ErrorIs(t, err, ErrCatalogFetch)
		assert.NotErrorIs(t, err, ErrOrderFetch)
	})
}

func TestListOrders(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, `[
		{"id":1,"items":[],"totalPrice":0,"orderDate":"2024-01-01T00:00:00.000Z","customerName":"Ann"},
		{"id":2,"coffee":{"id":1,"name":"Latte","price":4.5},"quantity":1,"totalPrice":4.5,"orderDate":"2024-01-02T00:00:00.000Z","customerName":"Bob"}
	]`)
	oc := NewOrderClient(newTestClient(t, srv.URL))

	entries, err := oc.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, coffee.KindOrder, entries[0].Kind)
	assert.Equal(t, coffee.KindLegacy, entries[1].Kind)
}

func TestListOrdersRejectsUnknownShape(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, `[{"id":1}]`)
	oc := NewOrderClient(newTestClient(t, srv.URL))

	_, err := oc.ListOrders(context.Background())
	require.ErrorIs(t, err, ErrOrderFetch)
	require.ErrorIs(t, err, coffee.ErrUnknownOrderShape)
}

func TestPlaceOrder(t *testing.T) {
	srv, ch := newStubServer(t, http.StatusCreated, `{"id":17,"items":[{"coffee":{"id":1,"name":"Latte","price":4.5,"description":""},"quantity":2}],"totalPrice":9,"orderDate":"2024-03-01T09:30:00.000Z","customerName":"Ann"}`)
	oc := NewOrderClient(newTestClient(t, srv.URL))

	payload := coffee.BuildOrder(
		[]coffee.BasketItem{{Coffee: coffee.Coffee{ID: 1, Name: "Latte", Price: 4.5}, Quantity: 2}},
		"Ann",
		&coffee.PaymentInfo{Method: coffee.PaymentCash, Status: coffee.PaymentCompleted, TransactionID: "TXN-1"},
		time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC),
	)

	created, err := oc.PlaceOrder(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, 17, created.ID)

	rec := <-ch
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/orders", rec.Path)
	assert.Equal(t, "application/json", rec.Header.Get("Content-Type"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.Body), &sent))
	assert.NotContains(t, sent, "id")
	assert.Equal(t, 9.0, sent["totalPrice"])
	assert.Equal(t, "Ann", sent["customerName"])
}

func TestPlaceOrderError(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusBadRequest, `{"error":"invalid order"}`)
	oc := NewOrderClient(newTestClient(t, srv.URL))

	_, err := oc.PlaceOrder(context.Background(), coffee.NewOrder{})
	require.ErrorIs(t, err, ErrOrderSubmission)
}

func TestCheckHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/coffees", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Latte","price":4.5}]`))
	})
	mux.HandleFunc("/orders", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"coffee":{"id":1,"name":"Latte","price":4.5},"quantity":1,"totalPrice":4.5,"orderDate":"2024-01-01","customerName":"Ann"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	base := newTestClient(t, srv.URL)

	res := CheckHealth(context.Background(), HealthProbe{Name: "coffee-api", Catalog: NewCatalogClient(base), Orders: NewOrderClient(base)})
	assert.True(t, res.OK, res.Error)
	assert.Equal(t, 1, res.Coffees)
	assert.Equal(t, 1, res.Orders)
	assert.Empty(t, res.Error)
}

func TestCheckHealthFailures(t *testing.T) {
	t.Run("empty menu", func(t *testing.T) {
		srv, _ := newStubServer(t, http.StatusOK, `[]`)
		res := CheckHealth(context.Background(), HealthProbe{Name: "coffee-api", Catalog: NewCatalogClient(newTestClient(t, srv.URL))})
		assert.False(t, res.OK)
		assert.Equal(t, "menu is empty", res.Error)
	})

	t.Run("upstream status", func(t *testing.T) {
		srv, _ := newStubServer(t, http.StatusServiceUnavailable, `down`)
		res := CheckHealth(context.Background(), HealthProbe{Name: "coffee-api", Catalog: NewCatalogClient(newTestClient(t, srv.URL))})
		assert.False(t, res.OK)
		assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
		assert.Contains(t, res.Error, "down")
	})

	t.Run("unknown order shape", func(t *testing.T) {
		srv, _ := newStubServer(t, http.StatusOK, `[{"id":1}]`)
		res := CheckHealth(context.Background(), HealthProbe{Name: "coffee-api", Orders: NewOrderClient(newTestClient(t, srv.URL))})
		assert.False(t, res.OK)
		assert.Contains(t, res.Error, coffee.ErrUnknownOrderShape.Error())
	})
}
