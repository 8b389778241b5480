package coffee

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EntryKind discriminates the two record shapes the order resource may return.
type EntryKind int

const (
	KindOrder EntryKind = iota + 1
	KindLegacy
)

func (k EntryKind) String() string {
	switch k {
	case KindOrder:
		return "order"
	case KindLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// LegacyOrder is the single-coffee record written before baskets existed.
type LegacyOrder struct {
	ID           int     `json:"id"`
	Coffee       Coffee  `json:"coffee"`
	Quantity     int     `json:"quantity"`
	TotalPrice   float64 `json:"totalPrice"`
	OrderDate    string  `json:"orderDate"`
	CustomerName string  `json:"customerName"`
}

var ErrUnknownOrderShape = errors.New("order record has neither items nor coffee")

// HistoryEntry holds exactly one of Order or Legacy, selected by Kind at
// decode time.
type HistoryEntry struct {
	Kind   EntryKind
	Order  *Order
	Legacy *LegacyOrder
}

func EntryFromOrder(o Order) HistoryEntry {
	return HistoryEntry{Kind: KindOrder, Order: &o}
}

func EntryFromLegacy(o LegacyOrder) HistoryEntry {
	return HistoryEntry{Kind: KindLegacy, Legacy: &o}
}

func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("decode order record: %w", err)
	}

	if _, ok := probe["items"]; ok {
		var o Order
		if err := json.Unmarshal(data, &o); err != nil {
			return fmt.Errorf("decode order: %w", err)
		}
		*e = EntryFromOrder(o)
		return nil
	}
	if _, ok := probe["coffee"]; ok {
		var o LegacyOrder
		if err := json.Unmarshal(data, &o); err != nil {
			return fmt.Errorf("decode legacy order: %w", err)
		}
		*e = EntryFromLegacy(o)
		return nil
	}
	return ErrUnknownOrderShape
}

func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindOrder:
		return json.Marshal(e.Order)
	case KindLegacy:
		return json.Marshal(e.Legacy)
	default:
		return nil, ErrUnknownOrderShape
	}
}

func (e HistoryEntry) ID() int {
	switch {
	case e.Kind == KindOrder && e.Order != nil:
		return e.Order.ID
	case e.Kind == KindLegacy && e.Legacy != nil:
		return e.Legacy.ID
	default:
		return 0
	}
}

func (e HistoryEntry) OrderDate() string {
	switch {
	case e.Kind == KindOrder && e.Order != nil:
		return e.Order.OrderDate
	case e.Kind == KindLegacy && e.Legacy != nil:
		return e.Legacy.OrderDate
	default:
		return ""
	}
}

// dateLayouts are tried in order. Zoned layouts first; a bare date is UTC and
// a date-time without a zone is local time.
var dateLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02T15:04", true},
	{time.DateOnly, false},
}

// Date parses OrderDate as ISO-8601; unparsable dates yield the zero time.
func (e HistoryEntry) Date() time.Time {
	raw := e.OrderDate()
	for _, l := range dateLayouts {
		loc := time.UTC
		if l.local {
			loc = time.Local
		}
		if t, err := time.ParseInLocation(l.layout, raw, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (e HistoryEntry) TotalPrice() float64 {
	switch {
	case e.Kind == KindOrder && e.Order != nil:
		return e.Order.TotalPrice
	case e.Kind == KindLegacy && e.Legacy != nil:
		return e.Legacy.TotalPrice
	default:
		return 0
	}
}

func (e HistoryEntry) CustomerName() string {
	switch {
	case e.Kind == KindOrder && e.Order != nil:
		return e.Order.CustomerName
	case e.Kind == KindLegacy && e.Legacy != nil:
		return e.Legacy.CustomerName
	default:
		return ""
	}
}

// Lines returns the purchased items; a legacy record becomes a single line.
func (e HistoryEntry) Lines() []BasketItem {
	switch {
	case e.Kind == KindOrder && e.Order != nil:
		return e.Order.Items
	case e.Kind == KindLegacy && e.Legacy != nil:
		return []BasketItem{{Coffee: e.Legacy.Coffee, Quantity: e.Legacy.Quantity}}
	default:
		return nil
	}
}

// Payment is nil for legacy records and for orders placed without one.
func (e HistoryEntry) Payment() *PaymentInfo {
	if e.Kind == KindOrder && e.Order != nil {
		return e.Order.PaymentInfo
	}
	return nil
}
