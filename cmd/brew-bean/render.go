package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/LefterisXris/brew-bean-app/internal/catalog"
	"github.com/LefterisXris/brew-bean-app/internal/clients"
	"github.com/LefterisXris/brew-bean-app/internal/coffee"
	"github.com/LefterisXris/brew-bean-app/internal/history"
)

func newMenuCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Print the coffee menu",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			base, err := newCoffeeAPI(cfg)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

			coffees, err := catalog.NewMenu(clients.NewCatalogClient(base), logger).Coffees(cmd.Context())
			if err != nil {
				return err
			}
			return renderMenu(cmd.OutOrStdout(), coffees)
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print past orders, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			base, err := newCoffeeAPI(cfg)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

			view, err := history.NewService(clients.NewOrderClient(base), logger).Load(cmd.Context())
			if err != nil {
				return err
			}
			return renderHistory(cmd.OutOrStdout(), view, time.Local)
		},
	}
}

func renderMenu(w io.Writer, coffees []coffee.Coffee) error {
	if len(coffees) == 0 {
		_, err := fmt.Fprintln(w, "The menu is empty.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOFFEE\tPRICE\tDESCRIPTION")
	for _, c := range coffees {
		fmt.Fprintf(tw, "%d\t%s\t$%.2f\t%s\n", c.ID, c.Name, c.Price, c.Description)
	}
	return tw.Flush()
}

func renderHistory(w io.Writer, view history.View, loc *time.Location) error {
	if len(view.Orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDATE\tCUSTOMER\tITEMS\tPAYMENT\tTOTAL")
	for _, e := range view.Orders {
		payment := "-"
		if p := e.Payment(); p != nil {
			payment = p.Method.Label()
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\t$%.2f\n",
			e.ID(), history.FormatDate(e, loc), e.CustomerName(), describeLines(e.Lines()), payment, e.TotalPrice())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal spent: $%.2f\n", view.TotalSpent)
	return err
}

func describeLines(lines []coffee.BasketItem) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%d × %s", l.Quantity, l.Coffee.Name))
	}
	return strings.Join(parts, ", ")
}
