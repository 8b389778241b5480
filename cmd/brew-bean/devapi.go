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

	"github.com/LefterisXris/brew-bean-app/internal/config"
	"github.com/LefterisXris/brew-bean-app/internal/devapi"
)

func newDevAPICmd(opts *rootOptions) *cobra.Command {
	var (
		port   string
		dbFile string
	)

	cmd := &cobra.Command{
		Use:   "dev-api",
		Short: "Run an in-memory coffee api for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.DevAPIPort = port
			}
			logger := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout).With("component", "dev-api")

			data, err := devapi.Seed()
			if dbFile != "" {
				data, err = devapi.LoadFile(dbFile)
			}
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDevAPI(ctx, cfg, devapi.NewStore(data), logger)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides DEV_API_PORT)")
	cmd.Flags().StringVar(&dbFile, "db", "", "json-server style db file to serve instead of the built-in menu")
	return cmd
}

func runDevAPI(ctx context.Context, cfg config.Config, store *devapi.Store, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              ":" + cfg.DevAPIPort,
		Handler:           devapi.NewRouter(devapi.NewHandler(store, logger), cfg.CORSAllowOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "coffees", len(store.Coffees()), "orders", len(store.Orders()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
