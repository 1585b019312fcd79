// Package events is the in-process bus for post-commit domain events.
// Durable side effects (notification rows) are written inside the domain
// transaction by the notification generator; subscribers here are
// best-effort only and must never fail a request.
package events

import (
	"sync"
	"time"
)

// MessagePosted is published after a message transaction commits.
type MessagePosted struct {
	MessageID   uint
	ChatID      uint
	AuthorID    uint
	AuthorAlias string
	Text        string
	CreatedAt   time.Time
}

// ChatStarted is published after a new chat is created.
type ChatStarted struct {
	ChatID    uint
	ListingID uint
	AuthorID  uint // listing owner
	StarterID uint
}

// ExchangeCompleted is published after a chat is marked complete.
type ExchangeCompleted struct {
	ChatID      uint
	CompletedBy uint
}

// RatingSubmitted is published after a rating is stored.
type RatingSubmitted struct {
	RatingID    uint
	ChatID      uint
	EvaluatorID uint
	Score       int
}

// Event is one of the types above.
type Event interface{}

// Handler receives events. It must not block; slow consumers should
// buffer internally.
type Handler func(Event)

// Bus fans events out to subscribers. Publish is fire-and-forget:
// handlers run on the publisher's goroutine after the transaction that
// produced the event has committed, and panics are swallowed so a
// broken subscriber cannot fail the request path.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() { recover() }()
			h(e)
		}()
	}
}
