package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

type fakeFetcher struct {
	calls  atomic.Int32
	listFn func(ctx context.Context) ([]coffee.Coffee, error)
}

func (f *fakeFetcher) ListCoffees(ctx context.Context) ([]coffee.Coffee, error) {
	f.calls.Add(1)
	return f.listFn(ctx)
}

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

var sampleMenu = []coffee.Coffee{
	{ID: 1, Name: "Espresso", Price: 2.5},
	{ID: 2, Name: "Latte", Price: 4.5},
}

func TestCoffeesReturnsFullList(t *testing.T) {
	f := &fakeFetcher{listFn: func(context.Context) ([]coffee.Coffee, error) { return sampleMenu, nil }}
	m := NewMenu(f, testLogger())

	got, err := m.Coffees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleMenu, got)

	got[0].Name = "changed"
	assert.Equal(t, "Espresso", m.Cached()[0].Name)
}

func TestCoffeesError(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeFetcher{listFn: func(context.Context) ([]coffee.Coffee, error) { return nil, boom }}
	m := NewMenu(f, testLogger())

	_, err := m.Coffees(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, m.Cached())
}

func TestLookup(t *testing.T) {
	f := &fakeFetcher{listFn: func(context.Context) ([]coffee.Coffee, error) { return sampleMenu, nil }}
	m := NewMenu(f, testLogger())

	c, err := m.Lookup(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Latte", c.Name)
	assert.Equal(t, int32(1), f.calls.Load())

	// cache hit
	_, err = m.Lookup(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestLookupUnknownRefreshesOnce(t *testing.T) {
	f := &fakeFetcher{listFn: func(context.Context) ([]coffee.Coffee, error) { return sampleMenu, nil }}
	m := NewMenu(f, testLogger())
	_, err := m.Coffees(context.Background())
	require.NoError(t, err)

	_, err = m.Lookup(context.Background(), 99)
	require.ErrorIs(t, err, ErrUnknownCoffee)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestLookupPicksUpNewCoffee(t *testing.T) {
	menus := [][]coffee.Coffee{sampleMenu, append(append([]coffee.Coffee{}, sampleMenu...), coffee.Coffee{ID: 3, Name: "Mocha", Price: 5})}
	var n atomic.Int32
	f := &fakeFetcher{listFn: func(context.Context) ([]coffee.Coffee, error) {
		i := n.Add(1) - 1
		if int(i) >= len(menus) {
			i = int32(len(menus) - 1)
		}
		return menus[i], nil
	}}
	m := NewMenu(f, testLogger())
	_, err := m.Coffees(context.Background())
	require.NoError(t, err)

	c, err := m.Lookup(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Mocha", c.Name)
}

func TestCoffeesSharedFetchSurvivesCallerCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var (
		once     sync.Once
		fetchErr atomic.Value
	)
	f := &fakeFetcher{listFn: func(ctx context.Context) ([]coffee.Coffee, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			fetchErr.Store(err)
			return nil, err
		}
		return sampleMenu, nil
	}}
	m := NewMenu(f, testLogger())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := m.Coffees(firstCtx)
		firstErr <- err
	}()
	<-started

	type result struct {
		list []coffee.Coffee
		err  error
	}
	second := make(chan result, 1)
	go func() {
		list, err := m.Coffees(context.Background())
		second <- result{list, err}
	}()

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, sampleMenu, got.list)
	assert.Nil(t, fetchErr.Load())
	assert.Equal(t, sampleMenu, m.Cached())
}
