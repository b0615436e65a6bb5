package events

import (
	"context"
	"sync"

	"mixbot/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePlayerRegistered EventType = "player_registered"
	EventTypePointsChanged    EventType = "points_changed"
	EventTypeMatchFinalized   EventType = "match_finalized"
	EventTypeMatchCancelled   EventType = "match_cancelled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PlayerRegisteredEvent represents a new player registration
type PlayerRegisteredEvent struct {
	DiscordID int64
}

func (e PlayerRegisteredEvent) Type() EventType {
	return EventTypePlayerRegistered
}

// PointsChangedEvent represents a point adjustment that was committed
type PointsChangedEvent struct {
	DiscordID int64
	OldPoints int
	NewPoints int
	Delta     int
	Reason    string
}

func (e PointsChangedEvent) Type() EventType {
	return EventTypePointsChanged
}

// MatchFinalizedEvent represents a match whose outcome was applied
type MatchFinalizedEvent struct {
	MatchID       int64
	GuildID       int64
	WinningTeam   models.TeamLabel
	MVPDiscordID  *int64
	FailedPlayers []int64
}

func (e MatchFinalizedEvent) Type() EventType {
	return EventTypeMatchFinalized
}

// MatchCancelledEvent represents a match abandoned before finalization
type MatchCancelledEvent struct {
	MatchID int64
	GuildID int64
}

func (e MatchCancelledEvent) Type() EventType {
	return EventTypeMatchCancelled
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and only
// hands them to the real bus once the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the transaction context, so emit on a fresh one.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events; called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
