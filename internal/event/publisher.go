// Package event delivers reservation events to the outside world. Publishing
// is best-effort: a failing publisher must never interrupt the request flow
// that produced the event.
package event

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reeltime/seat-reservation/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// LogPublisher writes events to the structured log. It is the default sink
// when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.Event) error {
	p.logger.Info("reservation event",
		"type", event.Type,
		"showtime_id", event.ShowtimeID,
		"session_id", event.SessionID,
		"seat_id", event.SeatID,
		"reference", event.Reference,
	)

	return nil
}

// Fanout forwards every event to all wrapped publishers and returns the first
// error, after all publishers had their chance.
type Fanout struct {
	publishers []Publisher
}

func NewFanout(publishers ...Publisher) *Fanout {
	return &Fanout{publishers: publishers}
}

func (f *Fanout) Publish(ctx context.Context, event domain.Event) error {
	var firstErr error

	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Recorder captures published events for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]domain.Event, len(r.events))
	copy(events, r.events)

	return events
}

// OfType filters the recorded events by type.
func (r *Recorder) OfType(t domain.EventType) []domain.Event {
	var matched []domain.Event

	for _, e := range r.Events() {
		if e.Type == t {
			matched = append(matched, e)
		}
	}

	return matched
}
