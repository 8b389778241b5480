package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LefterisXris/brew-bean-app/internal/config"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	apiURL string
}

// load reads the layered configuration and applies command line overrides.
func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if o.apiURL != "" {
		cfg.CoffeeAPIURL = o.apiURL
	}
	return cfg, cfg.Validate()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "brew-bean",
		Short:         "Order coffee from the brew-bean menu",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Base URL of the coffee api (overrides COFFEE_API_URL)")

	root.AddCommand(
		newServeCmd(opts),
		newDevAPICmd(opts),
		newMenuCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
