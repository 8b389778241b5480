package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LefterisXris/brew-bean-app/internal/basket"
	"github.com/LefterisXris/brew-bean-app/internal/catalog"
	"github.com/LefterisXris/brew-bean-app/internal/checkout"
	"github.com/LefterisXris/brew-bean-app/internal/clients"
	"github.com/LefterisXris/brew-bean-app/internal/coffee"
	"github.com/LefterisXris/brew-bean-app/internal/config"
	"github.com/LefterisXris/brew-bean-app/internal/events"
	"github.com/LefterisXris/brew-bean-app/internal/history"
	httpapi "github.com/LefterisXris/brew-bean-app/internal/http"
	"github.com/LefterisXris/brew-bean-app/internal/metrics"
	"github.com/LefterisXris/brew-bean-app/internal/payment"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ordering API and live update stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, newLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout))
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	return cmd
}

// newCoffeeAPI builds the shared base client for the remote resource.
func newCoffeeAPI(cfg config.Config) (*clients.Client, error) {
	return clients.NewClient("coffee-api", cfg.CoffeeAPIURL, &http.Client{Timeout: cfg.UpstreamTimeout})
}

func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	base, err := newCoffeeAPI(cfg)
	if err != nil {
		return err
	}
	catalogClient := clients.NewCatalogClient(base)
	orderClient := clients.NewOrderClient(base)

	m := metrics.New()

	// One basket per process session.
	store := basket.NewStore()
	_, cancelGauge := store.Subscribe(func(items []coffee.BasketItem) {
		m.SetBasket(coffee.Count(items), coffee.Total(items))
	})
	defer cancelGauge()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		conn, p, err := events.Dial(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("order events disabled", "err", err)
		} else {
			defer conn.Close()
			defer p.Close()
			publisher = p
		}
	}

	sim := payment.NewSimulator(
		payment.Config{FailureRate: cfg.Payment.FailureRate, Latency: cfg.Latencies()},
		payment.WithLogger(logger),
	)
	flow := checkout.NewFlow(store, sim, orderClient,
		checkout.WithLogger(logger),
		checkout.WithMetrics(m),
		checkout.WithPublisher(publisher),
		checkout.WithResetDelay(cfg.CheckoutResetDelay),
	)

	g, gctx := errgroup.WithContext(ctx)

	router := httpapi.NewRouter(httpapi.Deps{
		Ctx:      gctx,
		Logger:   logger,
		Cfg:      cfg,
		Basket:   store,
		Menu:     catalog.NewMenu(catalogClient, logger),
		History:  history.NewService(orderClient, logger),
		Checkout: flow,
		Metrics:  m,
		HealthProbes: []clients.HealthProbe{
			{Name: "coffee-api", Catalog: catalogClient, Orders: orderClient},
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "coffee_api", cfg.CoffeeAPIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		// let an in-flight checkout reach its outcome
		flow.Wait()
		logger.Info("shutdown complete")
		return err
	})

	return g.Wait()
}
