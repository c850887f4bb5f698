package manager

import (
	"modelpipe/internal/stats"
	"modelpipe/pkg/types"
)

// Info describes the active session's signatures. Callers ensure a serving
// path first, so ErrNoSession signals a programming error rather than a
// condition a peer can trigger.
func (m *Manager) Info() (types.ModelInfoResponse, error) {
	m.mu.RLock()
	sess := m.cur
	m.mu.RUnlock()
	if sess == nil {
		return types.ModelInfoResponse{}, ErrNoSession
	}
	info := types.ModelInfoResponse{
		Path:      sess.path,
		SessionID: sess.id,
		Inputs:    make([]types.NamedTensor, 0, len(sess.sig.Inputs)),
		Outputs:   make([]types.NamedTensor, 0, len(sess.sig.Outputs)),
	}
	for _, name := range sortedInputNames(sess.sig) {
		spec := sess.sig.Inputs[name]
		info.Inputs = append(info.Inputs, types.NamedTensor{
			Name:       name,
			TensorSpec: types.TensorSpec{DType: spec.DType, Shape: cloneShape(spec.Shape)},
		})
	}
	for _, out := range sess.sig.Outputs {
		info.Outputs = append(info.Outputs, types.NamedTensor{
			Name:       out.Name,
			TensorSpec: types.TensorSpec{DType: out.DType, Shape: cloneShape(out.Shape)},
		})
	}
	if d, ok := sess.handle.(Digester); ok {
		info.Digest = d.Digest()
	}
	return info, nil
}

// Stats reports the rolling metrics of the active session.
func (m *Manager) Stats() (types.StatsResponse, error) {
	m.mu.RLock()
	sess := m.cur
	m.mu.RUnlock()
	if sess == nil {
		return types.StatsResponse{}, ErrNoSession
	}
	return m.statsResponse(), nil
}

// Observations returns a copy of the active session's observation log.
func (m *Manager) Observations() []stats.Observation {
	return m.stats.Observations()
}

func (m *Manager) statsResponse() types.StatsResponse {
	met := m.stats.Generate()
	return types.StatsResponse{
		LastBatchTimeMs:      met.LastBatchTimeMs,
		AverageBatchTimeMs:   met.AverageBatchTimeMs,
		PredictionsPerSecond: met.PredictionsPerSecond,
		LastMemoryBytes:      met.LastMemoryBytes,
		Observations:         m.stats.Len(),
	}
}
