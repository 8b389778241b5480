package basket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

var (
	latte    = coffee.Coffee{ID: 1, Name: "Latte", Price: 4.50}
	espresso = coffee.Coffee{ID: 2, Name: "Espresso", Price: 2.50}
	mocha    = coffee.Coffee{ID: 3, Name: "Mocha", Price: 5.25}
)

func TestAddMergesRepeatedIDs(t *testing.T) {
	s := NewStore()

	s.Add(latte, 1)
	s.Add(espresso, 2)
	s.Add(latte, 3)
	s.Add(espresso, 1)
	s.Add(mocha, 1)

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, latte.ID, items[0].Coffee.ID)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, espresso.ID, items[1].Coffee.ID)
	assert.Equal(t, 3, items[1].Quantity)
	assert.Equal(t, 1, items[2].Quantity)
}

func TestAddNormalisesNonPositiveQuantity(t *testing.T) {
	s := NewStore()
	s.Add(latte, 0)
	s.Add(espresso, -4)

	for _, it := range s.Items() {
		assert.Equal(t, 1, it.Quantity)
	}
}

func TestUpdateQuantity(t *testing.T) {
	t.Run("sets quantity", func(t *testing.T) {
		s := NewStore()
		s.Add(latte, 1)
		s.UpdateQuantity(latte.ID, 5)
		assert.Equal(t, 5, s.Items()[0].Quantity)
	})

	for _, q := range []int{0, -1} {
		t.Run("non-positive removes", func(t *testing.T) {
			viaUpdate := NewStore()
			viaRemove := NewStore()
			for _, s := range []*Store{viaUpdate, viaRemove} {
				s.Add(latte, 2)
				s.Add(espresso, 1)
			}

			viaUpdate.UpdateQuantity(latte.ID, q)
			viaRemove.Remove(latte.ID)

			assert.Equal(t, viaRemove.Items(), viaUpdate.Items())
			assert.Len(t, viaUpdate.Items(), 1)
		})
	}

	t.Run("absent id is a no-op", func(t *testing.T) {
		s := NewStore()
		s.Add(latte, 2)
		before := s.Items()

		published := 0
		_, cancel := s.Subscribe(func([]coffee.BasketItem) { published++ })
		defer cancel()

		s.UpdateQuantity(99, 3)

		assert.Equal(t, before, s.Items())
		assert.Zero(t, published)
	})
}

func TestTotalAndItemCount(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0.0, s.Total())
	assert.Equal(t, 0, s.ItemCount())
	assert.True(t, s.Empty())

	s.Add(latte, 2)
	s.Add(espresso, 3)
	s.Add(mocha, 1)

	assert.InDelta(t, 4.50*2+2.50*3+5.25, s.Total(), 1e-9)
	assert.Equal(t, 6, s.ItemCount())

	s.Remove(espresso.ID)
	assert.InDelta(t, 4.50*2+5.25, s.Total(), 1e-9)
	assert.Equal(t, 3, s.ItemCount())
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Add(latte, 1)

	s.Clear()
	assert.Empty(t, s.Items())
	s.Clear()
	assert.Empty(t, s.Items())
	assert.NotNil(t, s.Items())
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	s := NewStore()
	s.Add(latte, 1)

	var snapshots [][]coffee.BasketItem
	current, cancel := s.Subscribe(func(items []coffee.BasketItem) {
		snapshots = append(snapshots, items)
	})

	require.Len(t, current, 1)

	s.Add(latte, 1)
	s.Add(espresso, 1)
	s.Clear()

	require.Len(t, snapshots, 3)
	assert.Equal(t, 2, snapshots[0][0].Quantity)
	assert.Len(t, snapshots[1], 2)
	assert.Empty(t, snapshots[2])

	// each broadcast is its own slice
	snapshots[1][0].Quantity = 42
	assert.Equal(t, 2, snapshots[0][0].Quantity)

	cancel()
	s.Add(mocha, 1)
	assert.Len(t, snapshots, 3)
}

func TestItemsReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Add(latte, 1)

	items := s.Items()
	items[0].Quantity = 10

	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestListenerMayReadStore(t *testing.T) {
	s := NewStore()
	var totals []float64
	_, cancel := s.Subscribe(func([]coffee.BasketItem) {
		totals = append(totals, s.Total())
	})
	defer cancel()

	s.Add(latte, 2)

	assert.Equal(t, []float64{9}, totals)
}
