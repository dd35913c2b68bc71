// services/action_bus.go
package services

import (
	"context"
	"fmt"
	"sync"

	"chapter-community/metrics"
	"chapter-community/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// ActionHandler receives one event. A returned error or a panic is logged
// by the bus and never reaches the emitter.
type ActionHandler func(ctx context.Context, ev models.ActionEvent) error

type subscription struct {
	id      uint64
	handler ActionHandler
}

// ActionEventBus is an in-process, synchronous, best-effort pub/sub hub.
// There is no queue: an event emitted with no subscribers is lost.
type ActionEventBus struct {
	mu     sync.Mutex
	subs   []subscription
	nextID uint64

	clock  clockwork.Clock
	logger zerolog.Logger
}

func NewActionEventBus(clock clockwork.Clock, logger zerolog.Logger) *ActionEventBus {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ActionEventBus{clock: clock, logger: logger}
}

// Subscribe registers handler and returns its de-registration func.
// The returned func is idempotent and safe to call from inside a handler.
func (b *ActionEventBus) Subscribe(handler ActionHandler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *ActionEventBus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	b.subs = out
}

// SubscriberCount returns the number of registered handlers.
func (b *ActionEventBus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Emit builds an event stamped with the current time and runs every handler
// registered at call time, in registration order. It never fails.
func (b *ActionEventBus) Emit(ctx context.Context, kind models.ActionKind, actorID string, payload models.ActionPayload) models.ActionEvent {
	if payload != nil && payload.Kind() != kind {
		b.logger.Warn().
			Str("action_kind", string(kind)).
			Str("payload_kind", string(payload.Kind())).
			Msg("payload does not match action kind, dropping payload")
		payload = nil
	}

	ev := models.ActionEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		ActorID:    actorID,
		Payload:    payload,
		OccurredAt: b.clock.Now(),
	}

	b.mu.Lock()
	snapshot := make([]subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		b.deliver(ctx, s, ev)
	}
	return ev
}

func (b *ActionEventBus) deliver(ctx context.Context, s subscription, ev models.ActionEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.reportFailure(ev, s.id, fmt.Errorf("subscriber panic: %v", r))
		}
	}()
	if err := s.handler(ctx, ev); err != nil {
		b.reportFailure(ev, s.id, err)
	}
}

func (b *ActionEventBus) reportFailure(ev models.ActionEvent, subID uint64, err error) {
	metrics.IncBusSubscriberFailure(string(ev.Kind))
	b.logger.Error().
		Err(err).
		Str("action_kind", string(ev.Kind)).
		Str("event_id", ev.ID).
		Uint64("subscriber", subID).
		Msg("action subscriber failed")
}
