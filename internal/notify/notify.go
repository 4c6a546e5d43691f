// Package notify carries "the transaction set changed" signals between
// writers and every store that must reload.
package notify

import (
	"context"
	"time"
)

// Event says something changed. Consumers must reload rather than patch.
type Event struct {
	Source string    `json:"source"`
	Op     string    `json:"op,omitempty"`
	At     time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscriber delivers events to fn until ctx is done. Subscribe blocks.
type Subscriber interface {
	Subscribe(ctx context.Context, fn func(Event)) error
}

type Feed interface {
	Publisher
	Subscriber
}
