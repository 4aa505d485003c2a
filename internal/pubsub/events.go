// Package pubsub fans typed events out to in-process subscribers: catalog
// file changes from the watcher, reloaded entry lists for the picker and
// debug log lines.
package pubsub

import (
	"context"
	"time"
)

// EventType says what happened to the payload.
type EventType string

const (
	// UpdatedEvent carries new contents: a rewritten catalog path or a
	// reloaded entry list.
	UpdatedEvent EventType = "updated"
	// DeletedEvent carries the path of a catalog that no longer exists.
	DeletedEvent EventType = "deleted"
	// LoggedEvent carries one formatted debug log line.
	LoggedEvent EventType = "logged"
)

// Event is one published payload, stamped when it was published.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber is what consumers such as the picker listener depend on.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher returns how many subscribers received the payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T) int
}
