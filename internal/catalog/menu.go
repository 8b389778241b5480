package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

var ErrUnknownCoffee = errors.New("unknown coffee")

// fetchTimeout bounds a shared fetch, which outlives any single caller.
const fetchTimeout = 10 * time.Second

type Fetcher interface {
	ListCoffees(ctx context.Context) ([]coffee.Coffee, error)
}

// Menu serves the coffee list from the remote resource and keeps the last
// successful fetch for id lookups.
type Menu struct {
	src    Fetcher
	logger *slog.Logger

	group singleflight.Group

	mu     sync.RWMutex
	cached []coffee.Coffee
	byID   map[int]coffee.Coffee
}

func NewMenu(src Fetcher, logger *slog.Logger) *Menu {
	if logger == nil {
		logger = slog.Default()
	}
	return &Menu{src: src, logger: logger}
}

// Coffees always asks the remote resource. Concurrent callers share one
// request, which is not cancelled when one of them gives up. The returned
// slice is the caller's to keep.
func (m *Menu) Coffees(ctx context.Context) ([]coffee.Coffee, error) {
	ch := m.group.DoChan("coffees", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		list, err := m.src.ListCoffees(fetchCtx)
		if err != nil {
			return nil, err
		}
		m.store(list)
		return list, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		m.logger.ErrorContext(ctx, "fetch coffees failed", "err", res.Err)
		return nil, res.Err
	}
	list := res.Val.([]coffee.Coffee)
	out := make([]coffee.Coffee, len(list))
	copy(out, list)
	return out, nil
}

// Lookup resolves id from the cache, refreshing once when it is missing.
func (m *Menu) Lookup(ctx context.Context, id int) (coffee.Coffee, error) {
	if c, ok := m.cachedCoffee(id); ok {
		return c, nil
	}
	if _, err := m.Coffees(ctx); err != nil {
		return coffee.Coffee{}, err
	}
	if c, ok := m.cachedCoffee(id); ok {
		return c, nil
	}
	return coffee.Coffee{}, fmt.Errorf("%w: id %d", ErrUnknownCoffee, id)
}

// Cached returns the last fetched list without touching the network.
func (m *Menu) Cached() []coffee.Coffee {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]coffee.Coffee, len(m.cached))
	copy(out, m.cached)
	return out
}

func (m *Menu) cachedCoffee(id int) (coffee.Coffee, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byID[id]
	return c, ok
}

func (m *Menu) store(list []coffee.Coffee) {
	byID := make(map[int]coffee.Coffee, len(list))
	for _, c := range list {
		byID[c.ID] = c
	}
	m.mu.Lock()
	m.cached = list
	m.byID = byID
	m.mu.Unlock()
}
