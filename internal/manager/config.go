package manager

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"modelpipe/internal/stats"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Runtime loads and executes models. Required for any load to succeed.
	Runtime ModelRuntime
	// Logger receives lifecycle logs. Zero value disables logging.
	Logger *zerolog.Logger
	// Publisher receives lifecycle events. Nil drops them.
	Publisher EventPublisher
	// MaxHistory bounds the observation log per session (0 = unbounded).
	MaxHistory int
	// InstanceID identifies this process in status output. Generated when empty.
	InstanceID string
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		runtime:    cfg.Runtime,
		publisher:  cfg.Publisher,
		maxHistory: cfg.MaxHistory,
		instanceID: cfg.InstanceID,
		log:        zerolog.Nop(),
		startTime:  time.Now(),
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.instanceID == "" {
		m.instanceID = uuid.New().String()
	}
	m.stats = stats.NewLog(m.maxHistory)
	return m
}
