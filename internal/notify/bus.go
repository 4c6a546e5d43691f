package notify

import (
	"context"
	"sync"
)

// Bus is an in-process Feed. Slow subscribers drop events once their buffer
// is full; a dropped event is harmless since any later one triggers the same reload.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	buf    int
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{subs: map[int]chan Event{}, buf: buffer}
}

func (b *Bus) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, fn func(Event)) error {
	ch := make(chan Event, b.buf)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-ch:
			fn(ev)
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
