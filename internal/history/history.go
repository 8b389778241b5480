package history

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

// DisplayLayout is how order dates are shown to the customer.
const DisplayLayout = "2006-01-02 15:04:05"

type Fetcher interface {
	ListOrders(ctx context.Context) ([]coffee.HistoryEntry, error)
}

type View struct {
	Orders     []coffee.HistoryEntry `json:"orders"`
	TotalSpent float64               `json:"totalSpent"`
}

type Service struct {
	src    Fetcher
	logger *slog.Logger
}

func NewService(src Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, logger: logger}
}

// Load fetches every past order, newest first.
func (s *Service) Load(ctx context.Context) (View, error) {
	entries, err := s.src.ListOrders(ctx)
	if err != nil {
		s.logger.Error("fetch order history failed", "err", err)
		return View{}, err
	}
	sorted := SortByDateDesc(entries)
	return View{Orders: sorted, TotalSpent: TotalSpent(sorted)}, nil
}

// SortByDateDesc returns a sorted copy. Entries with equal dates keep their
// relative order; unparsable dates sort as the oldest.
func SortByDateDesc(entries []coffee.HistoryEntry) []coffee.HistoryEntry {
	out := make([]coffee.HistoryEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date().After(out[j].Date())
	})
	return out
}

func TotalSpent(entries []coffee.HistoryEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.TotalPrice()
	}
	return sum
}

// FormatDate renders the entry's date in loc, or the raw stored string when
// it does not parse.
func FormatDate(e coffee.HistoryEntry, loc *time.Location) string {
	d := e.Date()
	if d.IsZero() {
		return e.OrderDate()
	}
	if loc == nil {
		loc = time.Local
	}
	return d.In(loc).Format(DisplayLayout)
}
