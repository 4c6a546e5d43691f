package notify

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FanOut(t *testing.T) {
	bus := NewBus(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var a, b atomic.Int32
	go func() { _ = bus.Subscribe(ctx, func(Event) { a.Add(1) }) }()
	go func() { _ = bus.Subscribe(ctx, func(Event) { b.Add(1) }) }()
	require.Eventually(t, func() bool { return bus.Subscribers() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Publish(ctx, Event{Source: "test", Op: "create"}))
	require.NoError(t, bus.Publish(ctx, Event{Source: "test", Op: "approve"}))

	require.Eventually(t, func() bool { return a.Load() == 2 && b.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestBus_UnsubscribesOnCancel(t *testing.T) {
	bus := NewBus(1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bus.Subscribe(ctx, func(Event) {}) }()
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 0, bus.Subscribers())
}

func TestBus_PublishNeverBlocks(t *testing.T) {
	bus := NewBus(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	go func() {
		_ = bus.Subscribe(ctx, func(Event) { <-release })
	}()
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = bus.Publish(ctx, Event{Source: "test"})
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	close(release)
}
