package manager

// releaseLocked drops the active session, if any, and clears the
// observation log. It requires opMu. A failing Close is logged but does not
// keep the old session alive.
func (m *Manager) releaseLocked(reason string) error {
	m.mu.Lock()
	old := m.cur
	m.cur = nil
	m.mu.Unlock()
	m.stats.Reset()
	sessionLoaded.Set(0)
	if old == nil {
		return nil
	}
	err := old.handle.Close()
	ev := m.log.Info()
	if err != nil {
		ev = m.log.Warn().Err(err)
	}
	ev.Str("path", old.path).Str("session_id", old.id).Str("reason", reason).Msg("session released")
	m.publish("session_released", old.path, map[string]any{"session_id": old.id, "reason": reason})
	return err
}

// Close releases the active session. Safe to call when nothing is loaded
// and more than once.
func (m *Manager) Close() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.releaseLocked("shutdown")
}
