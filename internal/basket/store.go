package basket

import (
	"sync"

	"github.com/LefterisXris/brew-bean-app/internal/broadcast"
	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

// Store holds the session's basket. Every mutation publishes a fresh
// snapshot to subscribers before the mutating call returns.
//
// Listeners run while the store serialises mutations, so they may read the
// store (Items, Total, ItemCount) but must not mutate it.
type Store struct {
	// emitMu orders mutation+publish pairs so listeners see snapshots in
	// mutation order. mu guards items only.
	emitMu sync.Mutex
	mu     sync.RWMutex
	items  []coffee.BasketItem
	feed   broadcast.Feed[[]coffee.BasketItem]
}

func NewStore() *Store {
	return &Store{items: []coffee.BasketItem{}}
}

// Add increments the line for c.ID or appends a new one. Quantities below 1
// are treated as 1.
func (s *Store) Add(c coffee.Coffee, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mutate(func(items []coffee.BasketItem) ([]coffee.BasketItem, bool) {
		for i := range items {
			if items[i].Coffee.ID == c.ID {
				items[i].Quantity += quantity
				return items, true
			}
		}
		return append(items, coffee.BasketItem{Coffee: c, Quantity: quantity}), true
	})
}

// UpdateQuantity sets the quantity for coffeeID. A quantity of zero or less
// removes the line; an absent id is a no-op.
func (s *Store) UpdateQuantity(coffeeID, quantity int) {
	if quantity <= 0 {
		s.Remove(coffeeID)
		return
	}

	s.mutate(func(items []coffee.BasketItem) ([]coffee.BasketItem, bool) {
		for i := range items {
			if items[i].Coffee.ID == coffeeID {
				items[i].Quantity = quantity
				return items, true
			}
		}
		return items, false
	})
}

// Remove filters out the line for coffeeID and always publishes.
func (s *Store) Remove(coffeeID int) {
	s.mutate(func(items []coffee.BasketItem) ([]coffee.BasketItem, bool) {
		out := make([]coffee.BasketItem, 0, len(items))
		for _, it := range items {
			if it.Coffee.ID != coffeeID {
				out = append(out, it)
			}
		}
		return out, true
	})
}

func (s *Store) Clear() {
	s.mutate(func([]coffee.BasketItem) ([]coffee.BasketItem, bool) {
		return []coffee.BasketItem{}, true
	})
}

// Items returns a copy of the current lines.
func (s *Store) Items() []coffee.BasketItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items)
}

func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return coffee.Total(s.items)
}

func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return coffee.Count(s.items)
}

func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) == 0
}

// Subscribe registers l for future snapshots and returns the current one.
// No change can be published between the returned snapshot and the
// registration.
func (s *Store) Subscribe(l broadcast.Listener[[]coffee.BasketItem]) (current []coffee.BasketItem, cancel func()) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	cancel = s.feed.Subscribe(l)
	return s.Items(), cancel
}

func (s *Store) mutate(fn func([]coffee.BasketItem) ([]coffee.BasketItem, bool)) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	next, changed := fn(clone(s.items))
	if changed {
		s.items = next
	}
	snapshot := clone(s.items)
	s.mu.Unlock()

	if changed {
		s.feed.Publish(snapshot)
	}
}

func clone(items []coffee.BasketItem) []coffee.BasketItem {
	out := make([]coffee.BasketItem, len(items))
	copy(out, items)
	return out
}
