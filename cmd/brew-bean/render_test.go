package main

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
	"github.com/LefterisXris/brew-bean-app/internal/history"
)

func TestRenderMenu(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderMenu(&buf, []coffee.Coffee{
		{ID: 1, Name: "Espresso", Price: 2.5, Description: "Strong"},
		{ID: 2, Name: "Latte", Price: 4.5, Description: "Milky"},
	}))

	out := buf.String()
	assert.Contains(t, out, "COFFEE")
	assert.Contains(t, out, "$2.50")
	assert.Contains(t, out, "Latte")

	buf.Reset()
	require.NoError(t, renderMenu(&buf, nil))
	assert.Equal(t, "The menu is empty.\n", buf.String())
}

func TestRenderHistory(t *testing.T) {
	current := coffee.EntryFromOrder(coffee.Order{
		ID:           2,
		Items:        []coffee.BasketItem{{Coffee: coffee.Coffee{ID: 2, Name: "Latte", Price: 4.5}, Quantity: 2}, {Coffee: coffee.Coffee{ID: 1, Name: "Espresso", Price: 2.5}, Quantity: 1}},
		TotalPrice:   11.5,
		OrderDate:    "2024-03-01T09:30:00.000Z",
		CustomerName: "Ann",
		PaymentInfo:  &coffee.PaymentInfo{Method: coffee.PaymentGooglePay, Status: coffee.PaymentCompleted},
	})
	legacy := coffee.EntryFromLegacy(coffee.LegacyOrder{
		ID:           1,
		Coffee:       coffee.Coffee{ID: 3, Name: "Mocha", Price: 5},
		Quantity:     1,
		TotalPrice:   5,
		OrderDate:    "2024-01-15T08:00:00.000Z",
		CustomerName: "Bob",
	})
	entries := []coffee.HistoryEntry{current, legacy}
	view := history.View{Orders: entries, TotalSpent: history.TotalSpent(entries)}

	var buf bytes.Buffer
	require.NoError(t, renderHistory(&buf, view, time.UTC))
	out := buf.String()

	assert.Contains(t, out, "2024-03-01 09:30:00")
	assert.Contains(t, out, "2 × Latte, 1 × Espresso")
	assert.Contains(t, out, "Google Pay")
	assert.Contains(t, out, "1 × Mocha")
	assert.Contains(t, out, "Total spent: $16.50")

	buf.Reset()
	require.NoError(t, renderHistory(&buf, history.View{}, time.UTC))
	assert.Equal(t, "No orders yet.\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "dev-api", "menu", "history"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("api-url"))
}
