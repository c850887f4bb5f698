package manager

import (
	"context"
	"fmt"
	"time"

	"modelpipe/pkg/types"
)

// Run executes instances against the active session. Each instance must
// carry every input named by the session's input signature. The result
// holds one record per instance, keyed by output key. When captureStats is
// set the batch is recorded in the session's observation log.
func (m *Manager) Run(ctx context.Context, instances []types.Instance, captureStats bool) ([]types.OutputRecord, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	sess := m.cur
	m.mu.RUnlock()
	if sess == nil {
		return nil, ErrNoSession
	}
	if len(instances) == 0 {
		return nil, ErrBadRequest("no instances given")
	}
	if err := validateInstances(sess.sig, instances); err != nil {
		return nil, err
	}

	startTs := time.Now()
	res, err := sess.handle.Execute(ctx, instances, captureStats)
	elapsed := time.Since(startTs)
	runDuration.Observe(elapsed.Seconds())
	if err != nil {
		if !IsBadRequest(err) {
			err = ErrRuntime("execute", err)
		}
		m.log.Debug().Str("path", sess.path).Err(err).Msg("run failed")
		return nil, err
	}
	records, err := zipOutputs(sess.sig.Outputs, res.Outputs, len(instances))
	if err != nil {
		return nil, ErrRuntime("execute", err)
	}

	m.mu.Lock()
	m.runsTotal++
	m.mu.Unlock()

	if captureStats {
		m.record(res.Trace, len(instances), elapsed)
	}
	m.log.Debug().Str("path", sess.path).Int("instances", len(instances)).Dur("dur", elapsed).Msg("run done")
	m.publish("run_done", sess.path, map[string]any{"instances": len(instances), "dur_us": elapsed.Microseconds()})
	return records, nil
}

// record appends one observation. A missing trace falls back to the
// wall-clock time measured around Execute and an unknown (zero) memory
// estimate.
func (m *Manager) record(tr *Trace, instances int, elapsed time.Duration) {
	items := instances
	durUs := elapsed.Microseconds()
	var memTotal int64
	if tr != nil {
		if tr.ItemCount > 0 {
			items = tr.ItemCount
		}
		durUs = tr.DurationMicros
		memTotal = tr.MemoryBytes
	}
	if durUs < 0 {
		durUs = 0
	}
	if memTotal < 0 {
		memTotal = 0
	}
	m.stats.Update(items, durUs, memTotal/int64(items))
	lastBatchSeconds.Set(float64(durUs) / 1e6)
}

// validateInstances checks that every instance names each signature input.
func validateInstances(sig types.Signature, instances []types.Instance) error {
	for i, inst := range instances {
		if inst == nil {
			return ErrBadRequest("instance %d: expected an object", i)
		}
		for _, name := range sortedInputNames(sig) {
			if _, ok := inst[name]; !ok {
				return ErrBadRequest("instance %d: missing input %q", i, name)
			}
		}
	}
	return nil
}

// zipOutputs turns runtime output columns into per-instance records.
func zipOutputs(outputs []types.NamedTensor, cols [][]any, n int) ([]types.OutputRecord, error) {
	if len(cols) != len(outputs) {
		return nil, fmt.Errorf("runtime returned %d output columns, signature has %d", len(cols), len(outputs))
	}
	for i, col := range cols {
		if len(col) != n {
			return nil, fmt.Errorf("output %q has %d values for %d instances", outputs[i].Name, len(col), n)
		}
	}
	records := make([]types.OutputRecord, n)
	for j := 0; j < n; j++ {
		rec := make(types.OutputRecord, len(outputs))
		for i, out := range outputs {
			rec[out.Name] = cols[i][j]
		}
		records[j] = rec
	}
	return records, nil
}
