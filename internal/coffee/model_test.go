package coffee

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrder(t *testing.T) {
	latte := Coffee{ID: 1, Name: "Latte", Price: 4.50}
	items := []BasketItem{{Coffee: latte, Quantity: 2}}
	payment := &PaymentInfo{Method: PaymentCash, Status: PaymentCompleted, TransactionID: "TXN-1"}
	now := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

	o := BuildOrder(items, "  Ann  ", payment, now)

	assert.Equal(t, 9.0, o.TotalPrice)
	assert.Equal(t, "Ann", o.CustomerName)
	assert.Equal(t, "2024-03-01T09:30:00.000Z", o.OrderDate)
	require.Len(t, o.Items, 1)
	require.NotNil(t, o.PaymentInfo)
	assert.Equal(t, PaymentCompleted, o.PaymentInfo.Status)

	// the payload must not alias caller-owned data
	items[0].Quantity = 99
	payment.Status = PaymentFailed
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, PaymentCompleted, o.PaymentInfo.Status)
}

func TestTotalAndCount(t *testing.T) {
	assert.Equal(t, 0.0, Total(nil))
	assert.Equal(t, 0, Count(nil))

	items := []BasketItem{
		{Coffee: Coffee{ID: 1, Price: 3}, Quantity: 2},
		{Coffee: Coffee{ID: 2, Price: 2.5}, Quantity: 1},
	}
	assert.Equal(t, 8.5, Total(items))
	assert.Equal(t, 3, Count(items))
}

func TestParsePaymentMethod(t *testing.T) {
	for _, m := range PaymentMethods() {
		got, err := ParsePaymentMethod(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
		assert.NotEmpty(t, m.Label())
	}

	_, err := ParsePaymentMethod("bitcoin")
	require.Error(t, err)
}

func TestHistoryEntryDecoding(t *testing.T) {
	body := `[
		{"id":1,"items":[{"coffee":{"id":1,"name":"Latte","price":4.5,"description":""},"quantity":2}],
		 "totalPrice":9,"orderDate":"2024-03-01T10:00:00.000Z","customerName":"Ann",
		 "paymentInfo":{"method":"cash","status":"completed","transactionId":"TXN-1"}},
		{"id":2,"coffee":{"id":3,"name":"Espresso","price":2.5,"description":""},"quantity":3,
		 "totalPrice":7.5,"orderDate":"2024-01-01T10:00:00.000Z","customerName":"Bob"}
	]`

	var entries []HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 2)

	current := entries[0]
	assert.Equal(t, KindOrder, current.Kind)
	assert.Equal(t, 1, current.ID())
	assert.Equal(t, 9.0, current.TotalPrice())
	require.NotNil(t, current.Payment())
	assert.Equal(t, "TXN-1", current.Payment().TransactionID)
	assert.Len(t, current.Lines(), 1)

	legacy := entries[1]
	assert.Equal(t, KindLegacy, legacy.Kind)
	assert.Equal(t, "Bob", legacy.CustomerName())
	assert.Nil(t, legacy.Payment())
	lines := legacy.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Espresso", lines[0].Coffee.Name)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC), legacy.Date())
}

func TestHistoryEntryRejectsUnknownShape(t *testing.T) {
	var e HistoryEntry
	err := json.Unmarshal([]byte(`{"id":5,"totalPrice":1}`), &e)
	require.ErrorIs(t, err, ErrUnknownOrderShape)
}

func TestHistoryEntryRoundTripKeepsShape(t *testing.T) {
	e := EntryFromLegacy(LegacyOrder{ID: 7, Coffee: Coffee{ID: 1, Name: "Mocha"}, Quantity: 1})
	body, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"coffee"`)
	assert.NotContains(t, string(body), `"items"`)
}

func TestHistoryEntryDateUnparsable(t *testing.T) {
	e := EntryFromOrder(Order{ID: 1, OrderDate: "yesterday"})
	assert.True(t, e.Date().IsZero())
}

func TestHistoryEntryDateISOForms(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2024-03-01T09:30:00.000Z", time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)},
		{"2024-03-01T09:30:00+02:00", time.Date(2024, time.March, 1, 7, 30, 0, 0, time.UTC)},
		{"2024-03-01T09:30:00", time.Date(2024, time.March, 1, 9, 30, 0, 0, time.Local)},
		{"2024-03-01T09:30", time.Date(2024, time.March, 1, 9, 30, 0, 0, time.Local)},
		{"2024-03-01", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got := EntryFromOrder(Order{ID: 1, OrderDate: tc.raw}).Date()
			assert.True(t, tc.want.Equal(got), "got %v", got)
		})
	}
}

func TestZeroHistoryEntryAccessors(t *testing.T) {
	var e HistoryEntry
	assert.NotPanics(t, func() {
		assert.Zero(t, e.ID())
		assert.Empty(t, e.OrderDate())
		assert.True(t, e.Date().IsZero())
		assert.Zero(t, e.TotalPrice())
		assert.Empty(t, e.CustomerName())
		assert.Nil(t, e.Lines())
		assert.Nil(t, e.Payment())
	})
}
