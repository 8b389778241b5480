// Package devapi is an in-memory stand-in for the coffee api, for local
// development and tests.
package devapi

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

//go:embed seed.json
var seedJSON []byte

var ErrNotFound = errors.New("not found")

var validate = validator.New()

// Data is the document the api serves, in the same layout as a json-server
// db file.
type Data struct {
	Coffees []coffee.Coffee       `json:"coffees"`
	Orders  []coffee.HistoryEntry `json:"orders"`
}

// Seed returns the built-in menu and sample history.
func Seed() (Data, error) {
	var d Data
	if err := json.Unmarshal(seedJSON, &d); err != nil {
		return Data{}, fmt.Errorf("decode seed: %w", err)
	}
	return d, nil
}

// LoadFile reads a json-server style db file.
func LoadFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read db file: %w", err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("decode db file %s: %w", path, err)
	}
	return d, nil
}

type Store struct {
	mu      sync.RWMutex
	coffees []coffee.Coffee
	orders  []coffee.HistoryEntry
	nextID  int
}

func NewStore(d Data) *Store {
	s := &Store{
		coffees: append([]coffee.Coffee{}, d.Coffees...),
		orders:  append([]coffee.HistoryEntry{}, d.Orders...),
	}
	for _, o := range s.orders {
		if o.ID() > s.nextID {
			s.nextID = o.ID()
		}
	}
	return s
}

func (s *Store) Coffees() []coffee.Coffee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]coffee.Coffee{}, s.coffees...)
}

func (s *Store) Coffee(id int) (coffee.Coffee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.coffees {
		if c.ID == id {
			return c, nil
		}
	}
	return coffee.Coffee{}, ErrNotFound
}

func (s *Store) Orders() []coffee.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]coffee.HistoryEntry{}, s.orders...)
}

func (s *Store) Order(id int) (coffee.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID() == id {
			return o, nil
		}
	}
	return coffee.HistoryEntry{}, ErrNotFound
}

// Create validates e, assigns the next id and stores it. Both order shapes
// are accepted.
func (s *Store) Create(e coffee.HistoryEntry) (coffee.HistoryEntry, error) {
	if err := validateEntry(e); err != nil {
		return coffee.HistoryEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	switch e.Kind {
	case coffee.KindOrder:
		o := *e.Order
		o.ID = s.nextID
		e = coffee.EntryFromOrder(o)
	case coffee.KindLegacy:
		l := *e.Legacy
		l.ID = s.nextID
		e = coffee.EntryFromLegacy(l)
	}
	s.orders = append(s.orders, e)
	return e, nil
}

func validateEntry(e coffee.HistoryEntry) error {
	switch e.Kind {
	case coffee.KindOrder:
		o := e.Order
		return validate.Struct(coffee.NewOrder{
			Items:        o.Items,
			TotalPrice:   o.TotalPrice,
			OrderDate:    o.OrderDate,
			CustomerName: o.CustomerName,
			PaymentInfo:  o.PaymentInfo,
		})
	case coffee.KindLegacy:
		if err := validate.Var(e.Legacy.Quantity, "gte=1"); err != nil {
			return err
		}
		return validate.Var(e.Legacy.CustomerName, "required")
	default:
		return coffee.ErrUnknownOrderShape
	}
}
