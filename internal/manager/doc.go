// Package manager owns the single active model session. It is structured
// into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig; NewWithConfig applies defaults.
//   - adapter_iface.go: the ModelRuntime/LoadedModel capability consumed here.
//   - ensure.go: EnsureServingPath, the swap-on-path-change lifecycle.
//   - inference.go: Run, output zipping and observation recording.
//   - info.go: signature and stats queries.
//   - unload.go: releasing the handle on swap and shutdown.
//   - status_report.go: Status/Snapshot reporting helpers.
//   - errors.go: error types and helpers (IsPathNotFound, IsRuntimeError, ...).
//   - events.go: lifecycle events and publishers.
//
// At most one session exists at a time. Loading a different path releases
// the previous handle and resets the observation log before the new load
// is attempted, so a failed load leaves the manager empty rather than half
// updated.
package manager
