// Package eventstest provides an in-memory event publisher for tests.
package eventstest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/lms-service/internal/events"
)

// Publisher records published events in memory
type Publisher struct {
	mu     sync.Mutex
	events []events.Event
	logger *slog.Logger
	err    error
}

func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// FailWith makes every later Publish return err
func (p *Publisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	p.logger.Debug("Recorded event", "type", event.Type)
	return nil
}

func (p *Publisher) Published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

// EventsOfType filters the recorded events
func (p *Publisher) EventsOfType(eventType string) []events.Event {
	var out []events.Event
	for _, e := range p.Published() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (p *Publisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func (p *Publisher) Close() error { return nil }
