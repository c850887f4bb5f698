package manager

import (
	"time"

	"modelpipe/pkg/types"
)

// session is the currently loaded model. A nil *session means nothing is
// loaded; a non-nil one always holds a live handle.
type session struct {
	id       string
	path     string
	handle   LoadedModel
	sig      types.Signature
	loadedAt time.Time
}

// SessionInfo is a read-only view of the active session.
type SessionInfo struct {
	ID       string
	Path     string
	LoadedAt time.Time
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	Session *SessionInfo
	Err     string
}
