package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/LefterisXris/brew-bean-app/internal/basket"
	"github.com/LefterisXris/brew-bean-app/internal/catalog"
	"github.com/LefterisXris/brew-bean-app/internal/checkout"
	"github.com/LefterisXris/brew-bean-app/internal/clients"
	"github.com/LefterisXris/brew-bean-app/internal/config"
	"github.com/LefterisXris/brew-bean-app/internal/history"
	"github.com/LefterisXris/brew-bean-app/internal/http/handlers"
	"github.com/LefterisXris/brew-bean-app/internal/metrics"
	"github.com/LefterisXris/brew-bean-app/internal/middleware"
)

type Deps struct {
	// Ctx bounds long-lived stream connections. Nil means never.
	Ctx    context.Context
	Logger *slog.Logger
	Cfg    config.Config

	Basket   *basket.Store
	Menu     *catalog.Menu
	History  *history.Service
	Checkout *checkout.Flow
	Metrics  *metrics.Metrics

	// Location used to display order dates. Nil means local time.
	Location *time.Location

	HealthProbes []clients.HealthProbe
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(middleware.Recover(d.Logger))
	r.Use(chimw.CleanPath)

	health := &handlers.HealthHandler{Probes: d.HealthProbes}
	r.Get("/health", health.Self)
	r.Get("/health/upstreams", health.Upstreams)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	cat := handlers.NewCatalogHandler(d.Menu)
	bsk := handlers.NewBasketHandler(d.Basket, d.Menu)
	chk := handlers.NewCheckoutHandler(d.Checkout)
	orders := handlers.NewOrdersHandler(d.History, d.Location)
	stream := handlers.NewStreamHandler(d.Ctx, d.Basket, d.Checkout, d.Metrics, d.Logger, d.Cfg.CORSAllowOrigins)

	r.Route("/api", func(r chi.Router) {
		r.Get("/coffees", cat.ListCoffees)
		r.Get("/payment-methods", cat.PaymentMethods)

		r.Route("/basket", func(r chi.Router) {
			r.Get("/", bsk.Get)
			r.Delete("/", bsk.Clear)
			r.Post("/items", bsk.AddItem)
			r.Patch("/items/{coffeeId}", bsk.UpdateItem)
			r.Delete("/items/{coffeeId}", bsk.RemoveItem)
		})

		r.Get("/checkout", chk.Status)
		r.Post("/checkout", chk.Submit)

		r.Get("/orders", orders.List)
		r.Get("/stream", stream.Serve)
	})

	return r
}
