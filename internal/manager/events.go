package manager

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Event represents a manager lifecycle event.
// Minimal and stable: name + serving path and optional fields via key/values.
type Event struct {
	ID     string
	Time   time.Time
	Name   string
	Path   string
	Fields map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MultiPublisher fans an event out to several publishers in order.
type MultiPublisher []EventPublisher

func (mp MultiPublisher) Publish(e Event) {
	for _, p := range mp {
		if p != nil {
			p.Publish(e)
		}
	}
}

// publish stamps e with an ID and time and hands it to the configured sink.
func (m *Manager) publish(name, path string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	p.Publish(Event{ID: ulid.Make().String(), Time: time.Now(), Name: name, Path: path, Fields: fields})
}
