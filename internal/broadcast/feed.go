// Package broadcast provides a synchronous listener registry for state
// that several consumers observe.
package broadcast

import "sync"

// Listener receives every published value, in publish order.
type Listener[T any] func(T)

// Feed fans a value out to all registered listeners on the publishing
// goroutine. The zero value is ready to use.
type Feed[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]Listener[T]
	order     []uint64
}

// Subscribe registers l and returns a function that removes it. Calling the
// cancel function more than once is harmless.
func (f *Feed[T]) Subscribe(l Listener[T]) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listeners == nil {
		f.listeners = make(map[uint64]Listener[T])
	}
	f.nextID++
	id := f.nextID
	f.listeners[id] = l
	f.order = append(f.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { f.remove(id) })
	}
}

func (f *Feed[T]) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.listeners, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Publish calls every listener registered at the time of the call, in
// registration order. Listeners must not block.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	ls := make([]Listener[T], 0, len(f.order))
	for _, id := range f.order {
		ls = append(ls, f.listeners[id])
	}
	f.mu.Unlock()

	for _, l := range ls {
		l(v)
	}
}

// Len reports how many listeners are registered.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}
