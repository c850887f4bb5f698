package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"modelpipe/internal/stats"
)

// Manager owns the single active model session and its observation log.
//
// opMu serializes every operation that may touch the runtime handle
// (ensure, run, close), which makes the check-then-swap in
// EnsureServingPath atomic. mu guards the fields read by status queries so
// those never wait on a long-running model call.
type Manager struct {
	opMu sync.Mutex

	mu         sync.RWMutex
	cur        *session
	err        string
	loadsTotal uint64
	runsTotal  uint64

	stats      *stats.Log
	maxHistory int

	runtime    ModelRuntime
	publisher  EventPublisher
	log        zerolog.Logger
	instanceID string
	startTime  time.Time
}

// New constructs a Manager around rt with default settings.
func New(rt ModelRuntime) *Manager {
	return NewWithConfig(ManagerConfig{Runtime: rt})
}

// SetEventPublisher replaces the event sink. Nil restores the no-op sink.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.publisher = p
}

// Ready reports whether a session is loaded.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur != nil
}

// ServingPath returns the path of the active session, or "" if none.
func (m *Manager) ServingPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return ""
	}
	return m.cur.path
}
