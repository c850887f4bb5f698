package manager

import (
	"time"

	"modelpipe/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := Snapshot{Err: m.err}
	if m.cur != nil {
		snap.Session = &SessionInfo{ID: m.cur.id, Path: m.cur.path, LoadedAt: m.cur.loadedAt}
	}
	return snap
}

// Status builds a detailed status response for the admin /status endpoint.
func (m *Manager) Status() types.StatusResponse {
	now := time.Now()
	m.mu.RLock()
	resp := types.StatusResponse{
		InstanceID:     m.instanceID,
		LastError:      m.err,
		LoadsTotal:     m.loadsTotal,
		RunsTotal:      m.runsTotal,
		UptimeSeconds:  int64(now.Sub(m.startTime) / time.Second),
		ServerTimeUnix: now.Unix(),
	}
	cur := m.cur
	m.mu.RUnlock()
	if cur != nil {
		resp.Session = &types.SessionStatus{
			SessionID: cur.id,
			Path:      cur.path,
			LoadedAt:  cur.loadedAt.Unix(),
			Stats:     m.statsResponse(),
		}
	}
	return resp
}
