package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"modelpipe/pkg/types"
)

// fakeRuntime is a lightweight in-memory runtime used for tests. Paths not
// present in models fail with ErrPathNotFound.
type fakeRuntime struct {
	models  map[string]types.Signature
	loadErr error
	loads   []string
	handles []*fakeModel
	// exec is invoked by every handle; nil echoes each input named like the
	// output key.
	exec  func(instances []types.Instance) ([][]any, error)
	trace *Trace
}

func newFakeRuntime(paths ...string) *fakeRuntime {
	rt := &fakeRuntime{models: map[string]types.Signature{}}
	for _, p := range paths {
		rt.models[p] = types.Signature{
			Inputs: map[string]types.TensorSpec{"x": {DType: "float32", Shape: []int64{-1}}},
			Outputs: []types.NamedTensor{
				{Name: "y", TensorSpec: types.TensorSpec{DType: "float32", Shape: []int64{-1}}},
				{Name: "x", TensorSpec: types.TensorSpec{DType: "float32", Shape: []int64{-1}}},
			},
		}
	}
	return rt
}

func (f *fakeRuntime) Load(ctx context.Context, path string) (LoadedModel, error) {
	f.loads = append(f.loads, path)
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	sig, ok := f.models[path]
	if !ok {
		return nil, ErrPathNotFound(path)
	}
	h := &fakeModel{rt: f, sig: sig}
	f.handles = append(f.handles, h)
	return h, nil
}

type fakeModel struct {
	rt     *fakeRuntime
	sig    types.Signature
	closed int
}

func (h *fakeModel) Signature() types.Signature { return h.sig }

func (h *fakeModel) Execute(ctx context.Context, instances []types.Instance, trace bool) (ExecResult, error) {
	var cols [][]any
	if h.rt.exec != nil {
		c, err := h.rt.exec(instances)
		if err != nil {
			return ExecResult{}, err
		}
		cols = c
	} else {
		// y doubles x, x echoes it
		cols = make([][]any, 2)
		for _, inst := range instances {
			x, _ := inst["x"].(float64)
			cols[0] = append(cols[0], x*2)
			cols[1] = append(cols[1], inst["x"])
		}
	}
	res := ExecResult{Outputs: cols}
	if trace {
		res.Trace = h.rt.trace
	}
	return res, nil
}

func (h *fakeModel) Close() error {
	h.closed++
	return nil
}

func (h *fakeModel) Digest() string { return "fake-digest" }

var errBackend = errors.New("backend exploded")

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
