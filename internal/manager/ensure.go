package manager

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// EnsureServingPath makes path the active session. It is a no-op when path
// is already being served, which also preserves the observation log.
// Otherwise the current handle is released, the log is reset and the
// runtime is asked to load path. The session is only committed once the
// load succeeds; on failure the manager holds no session and the error is
// returned to the caller.
func (m *Manager) EnsureServingPath(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrBadRequest("serving path is empty")
	}
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.ensureLocked(ctx, path)
}

// ensureLocked requires opMu.
func (m *Manager) ensureLocked(ctx context.Context, path string) error {
	m.mu.RLock()
	cur := m.cur
	m.mu.RUnlock()
	if cur != nil && cur.path == path {
		return nil
	}

	startTs := time.Now()
	m.log.Info().Str("path", path).Msg("ensure start")
	m.publish("ensure_start", path, nil)

	m.releaseLocked("swap")

	if m.runtime == nil {
		return m.loadFailed(path, ErrRuntime("load "+path, errors.New("no model runtime configured")))
	}
	handle, err := m.runtime.Load(ctx, path)
	if err != nil {
		if !IsPathNotFound(err) && !IsRuntimeError(err) && !IsBadRequest(err) {
			err = ErrRuntime("load "+path, err)
		}
		return m.loadFailed(path, err)
	}

	sess := &session{
		id:       ulid.Make().String(),
		path:     path,
		handle:   handle,
		sig:      handle.Signature(),
		loadedAt: time.Now(),
	}
	m.mu.Lock()
	m.cur = sess
	m.err = ""
	m.loadsTotal++
	m.mu.Unlock()

	sessionLoaded.Set(1)
	sessionSwapsTotal.Inc()
	dur := time.Since(startTs)
	m.log.Info().Str("path", path).Str("session_id", sess.id).Dur("dur", dur).Msg("ensure ready")
	m.publish("ensure_ready", path, map[string]any{"session_id": sess.id, "dur_ms": dur.Milliseconds()})
	return nil
}

func (m *Manager) loadFailed(path string, err error) error {
	m.mu.Lock()
	m.err = err.Error()
	m.mu.Unlock()
	loadFailuresTotal.Inc()
	m.log.Warn().Str("path", path).Err(err).Msg("ensure failed")
	m.publish("ensure_error", path, map[string]any{"error": err.Error()})
	return err
}
