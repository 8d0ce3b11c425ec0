// Package events carries cross-component notifications inside the process.
// The cart engine publishes after every mutation; badge counters, sidebars
// and the stock resolver subscribe instead of polling.
package events

import "sync"

// CartChanged is published after every cart mutation with the post-mutation
// total quantity.
type CartChanged struct {
	Total int
}

type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(CartChanged)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(CartChanged))}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *Bus) Subscribe(fn func(CartChanged)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers the event to every subscriber on the calling goroutine.
// Delivery order between subscribers is not specified.
func (b *Bus) Publish(e CartChanged) {
	b.mu.RLock()
	handlers := make([]func(CartChanged), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(e)
	}
}
