package manager

import (
	"errors"
	"math"
	"testing"

	"modelpipe/pkg/types"
)

func TestNewWithConfigDefaults(t *testing.T) {
	m := NewWithConfig(ManagerConfig{})
	if m.instanceID == "" {
		t.Fatalf("expected generated instance id")
	}
	if m.Ready() {
		t.Fatalf("expected not ready initially")
	}
	if m.ServingPath() != "" {
		t.Fatalf("expected empty serving path, got %q", m.ServingPath())
	}
}

func TestEnsureServingPath_Idempotent(t *testing.T) {
	rt := newFakeRuntime("a.yaml")
	m := New(rt)
	ctx := testCtx(t)
	if err := m.EnsureServingPath(ctx, "a.yaml"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := m.Run(ctx, []types.Instance{{"x": 1.0}}, true); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := m.EnsureServingPath(ctx, "a.yaml"); err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if len(rt.loads) != 1 {
		t.Fatalf("expected exactly one load, got %v", rt.loads)
	}
	if n := m.stats.Len(); n != 1 {
		t.Fatalf("expected observation log preserved, got %d entries", n)
	}
}

func TestEnsureServingPath_SwapResetsStats(t *testing.T) {
	rt := newFakeRuntime("a.yaml", "b.yaml")
	m := New(rt)
	ctx := testCtx(t)
	if err := m.EnsureServingPath(ctx, "a.yaml"); err != nil {
		t.Fatalf("ensure a: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := m.Run(ctx, []types.Instance{{"x": 1.0}}, true); err != nil {
			t.Fatalf("run: %v", err)
		}
	}
	if err := m.EnsureServingPath(ctx, "b.yaml"); err != nil {
		t.Fatalf("ensure b: %v", err)
	}
	if n := m.stats.Len(); n != 0 {
		t.Fatalf("expected empty log after swap, got %d", n)
	}
	if rt.handles[0].closed != 1 {
		t.Fatalf("expected old handle closed once, got %d", rt.handles[0].closed)
	}
	if m.ServingPath() != "b.yaml" {
		t.Fatalf("serving path=%q", m.ServingPath())
	}
	st, err := m.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.LastBatchTimeMs != nil || st.Observations != 0 {
		t.Fatalf("expected no data after swap, got %+v", st)
	}
}

func TestEnsureServingPath_NotFoundLeavesNoSession(t *testing.T) {
	rt := newFakeRuntime("a.yaml")
	m := New(rt)
	ctx := testCtx(t)
	if err := m.EnsureServingPath(ctx, "a.yaml"); err != nil {
		t.Fatalf("ensure a: %v", err)
	}
	err := m.EnsureServingPath(ctx, "missing.yaml")
	if err == nil || !IsPathNotFound(err) {
		t.Fatalf("expected path not found, got %v", err)
	}
	if m.Ready() || m.ServingPath() != "" {
		t.Fatalf("expected no session after failed load")
	}
	if rt.handles[0].closed != 1 {
		t.Fatalf("expected previous handle released")
	}
	if snap := m.Snapshot(); snap.Err == "" || snap.Session != nil {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if _, err := m.Info(); !IsNoSession(err) {
		t.Fatalf("expected no session error, got %v", err)
	}
}

func TestEnsureServingPath_BackendFailureIsRuntimeError(t *testing.T) {
	rt := newFakeRuntime("a.yaml")
	rt.loadErr = errBackend
	m := New(rt)
	err := m.EnsureServingPath(testCtx(t), "a.yaml")
	if !IsRuntimeError(err) || !errors.Is(err, errBackend) {
		t.Fatalf("expected wrapped runtime error, got %v", err)
	}
}

func TestEnsureServingPath_EmptyPath(t *testing.T) {
	m := New(newFakeRuntime())
	if err := m.EnsureServingPath(testCtx(t), "  "); !IsBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestEnsureServingPath_NoRuntime(t *testing.T) {
	m := NewWithConfig(ManagerConfig{})
	if err := m.EnsureServingPath(testCtx(t), "a.yaml"); !IsRuntimeError(err) {
		t.Fatalf("expected runtime error, got %v", err)
	}
}

func TestRun_ZipsOutputsPerInstance(t *testing.T) {
	m := New(newFakeRuntime("a.yaml"))
	ctx := testCtx(t)
	if err := m.EnsureServingPath(ctx, "a.yaml"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	out, err := m.Run(ctx, []types.Instance{{"x": 1.0}, {"x": 3.0}}, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[1]["y"] != 6.0 || out[1]["x"] != 3.0 {
		t.Fatalf("unexpected record: %+v", out[1])
	}
	if m.stats.Len() != 0 {
		t.Fatalf("expected no observation without captureStats")
	}
}

func TestRun_MissingInputIsBadRequest(t *testing.T) {
	m := New(newFakeRuntime("a.yaml"))
	ctx := testCtx(t)
	_ = m.EnsureServingPath(ctx, "a.yaml")
	if _, err := m.Run(ctx, []types.Instance{{"z": 1.0}}, false); !IsBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
	if _, err := m.Run(ctx, nil, false); !IsBadRequest(err) {
		t.Fatalf("expected bad request for empty batch, got %v", err)
	}
}

func TestRun_RuntimeFailureIsRuntimeError(t *testing.T) {
	rt := newFakeRuntime("a.yaml")
	rt.exec = func([]types.Instance) ([][]any, error) { return nil, errBackend }
	m := New(rt)
	ctx := testCtx(t)
	_ = m.EnsureServingPath(ctx, "a.yaml")
	_, err := m.Run(ctx, []types.Instance{{"x": 1.0}}, true)
	if !IsRuntimeError(err) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if m.stats.Len() != 0 {
		t.Fatalf("failed run must not be recorded")
	}
}

func TestRun_ColumnMismatchIsRuntimeError(t *testing.T) {
	rt := newFakeRuntime("a.yaml")
	rt.exec = func([]types.Instance) ([][]any, error) { return [][]any{{1.0}}, nil }
	m := New(rt)
	ctx := testCtx(t)
	_ = m.EnsureServingPath(ctx, "a.yaml")
	if _, err := m.Run(ctx, []types.Instance{{"x": 1.0}}, false); !IsRuntimeError(err) {
		t.Fatalf("expected runtime error, got %v", err)
	}
}

func TestRun_NoSession(t *testing.T) {
	m := New(newFakeRuntime())
	if _, err := m.Run(testCtx(t), []types.Instance{{"x": 1.0}}, false); !IsNoSession(err) {
		t.Fatalf("expected no session, got %v", err)
	}
}

func TestRun_RecordsTrace(t *testing.T) {
	rt := newFakeRuntime("a.yaml")
	rt.trace = &Trace{DurationMicros: 10000, MemoryBytes: 400, ItemCount: 4}
	m := New(rt)
	ctx := testCtx(t)
	_ = m.EnsureServingPath(ctx, "a.yaml")
	if _, err := m.Run(ctx, []types.Instance{{"x": 1.0}}, true); err != nil {
		t.Fatalf("run: %v", err)
	}
	obs := m.Observations()
	if len(obs) != 1 {
		t.Fatalf("expected one observation, got %d", len(obs))
	}
	if obs[0].ItemCount != 4 || obs[0].DurationMicros != 10000 || obs[0].AverageMemoryBytes != 100 {
		t.Fatalf("unexpected observation: %+v", obs[0])
	}
	st, _ := m.Stats()
	if st.PredictionsPerSecond == nil || math.Abs(*st.PredictionsPerSecond-400) > 1e-9 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestInfo_SortedInputsAndOrderedOutputs(t *testing.T) {
	rt := newFakeRuntime()
	rt.models["m.yaml"] = types.Signature{
		Inputs: map[string]types.TensorSpec{
			"b": {DType: "int64", Shape: []int64{1}},
			"a": {DType: "float32"},
		},
		Outputs: []types.NamedTensor{{Name: "z"}, {Name: "a"}},
	}
	m := New(rt)
	if err := m.EnsureServingPath(testCtx(t), "m.yaml"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	info, err := m.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Inputs[0].Name != "a" || info.Inputs[1].Name != "b" {
		t.Fatalf("inputs not sorted: %+v", info.Inputs)
	}
	if info.Outputs[0].Name != "z" || info.Outputs[1].Name != "a" {
		t.Fatalf("outputs reordered: %+v", info.Outputs)
	}
	if info.Inputs[0].Shape == nil {
		t.Fatalf("expected non-nil shape")
	}
	if info.Digest != "fake-digest" || info.SessionID == "" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestClose_ReleasesHandle(t *testing.T) {
	rt := newFakeRuntime("a.yaml")
	m := New(rt)
	_ = m.EnsureServingPath(testCtx(t), "a.yaml")
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if rt.handles[0].closed != 1 {
		t.Fatalf("expected one close, got %d", rt.handles[0].closed)
	}
	if m.Ready() {
		t.Fatalf("expected not ready after close")
	}
}

func TestStatus_ReportsSession(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Runtime: newFakeRuntime("a.yaml"), InstanceID: "inst-1"})
	ctx := testCtx(t)
	st := m.Status()
	if st.Session != nil || st.InstanceID != "inst-1" {
		t.Fatalf("unexpected initial status: %+v", st)
	}
	_ = m.EnsureServingPath(ctx, "a.yaml")
	_, _ = m.Run(ctx, []types.Instance{{"x": 2.0}}, true)
	st = m.Status()
	if st.Session == nil || st.Session.Path != "a.yaml" {
		t.Fatalf("expected session in status: %+v", st)
	}
	if st.LoadsTotal != 1 || st.RunsTotal != 1 || st.Session.Stats.Observations != 1 {
		t.Fatalf("unexpected counters: %+v", st)
	}
}
