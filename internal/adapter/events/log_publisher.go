package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// LogPublisher writes every event to a zap logger.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) {
	fields := []zap.Field{
		zap.String("event_id", event.ID.String()),
		zap.String("type", string(event.Type)),
		zap.String("actor", event.Actor.Hex()),
		zap.Uint64("entity_id", event.EntityID),
		zap.Time("occurred_at", event.OccurredAt),
	}
	for k, v := range event.Attributes {
		fields = append(fields, zap.String(k, v))
	}
	p.logger.Info("ledger event", fields...)
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of one type.
func (r *Recorder) OfType(eventType domain.EventType) []domain.Event {
	out := make([]domain.Event, 0)
	for _, event := range r.Events() {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// Fanout publishes each event to every publisher in order.
type Fanout []domain.EventPublisher

func (f Fanout) Publish(ctx context.Context, event domain.Event) {
	for _, p := range f {
		p.Publish(ctx, event)
	}
}
