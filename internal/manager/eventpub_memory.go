package manager

import (
	"slices"
	"sync"
)

// MemoryPublisher records every event it receives, in order.
type MemoryPublisher struct {
	mu  sync.Mutex
	buf []Event
}

// NewMemoryPublisher returns an empty recorder.
func NewMemoryPublisher() *MemoryPublisher { return new(MemoryPublisher) }

// Publish implements EventPublisher.
func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = append(p.buf, e)
}

// Events returns a copy of the recorded events.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.buf)
}

// Names returns just the event names, in publication order.
func (p *MemoryPublisher) Names() []string {
	evs := p.Events()
	names := make([]string, len(evs))
	for i, e := range evs {
		names[i] = e.Name
	}
	return names
}
