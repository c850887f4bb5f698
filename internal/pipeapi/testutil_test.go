package pipeapi

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"modelpipe/internal/manager"
	"modelpipe/pkg/types"
)

// doubler is a fake runtime: every known path serves a model with one
// input x and one output y = 2x.
type doubler struct {
	paths map[string]bool
	trace *manager.Trace
}

func newDoubler(paths ...string) *doubler {
	d := &doubler{paths: map[string]bool{}}
	for _, p := range paths {
		d.paths[p] = true
	}
	return d
}

func (d *doubler) Load(_ context.Context, path string) (manager.LoadedModel, error) {
	if !d.paths[path] {
		return nil, manager.ErrPathNotFound(path)
	}
	return &doublerModel{d: d}, nil
}

type doublerModel struct{ d *doubler }

func (m *doublerModel) Signature() types.Signature {
	return types.Signature{
		Inputs:  map[string]types.TensorSpec{"x": {DType: "float64", Shape: []int64{}}},
		Outputs: []types.NamedTensor{{Name: "y", TensorSpec: types.TensorSpec{DType: "float64", Shape: []int64{}}}},
	}
}

func (m *doublerModel) Execute(_ context.Context, instances []types.Instance, trace bool) (manager.ExecResult, error) {
	col := make([]any, 0, len(instances))
	for i, inst := range instances {
		x, ok := inst["x"].(float64)
		if !ok {
			return manager.ExecResult{}, fmt.Errorf("instance %d: x is not a number", i)
		}
		col = append(col, 2*x)
	}
	res := manager.ExecResult{Outputs: [][]any{col}}
	if trace {
		res.Trace = m.d.trace
	}
	return res, nil
}

func (m *doublerModel) Close() error { return nil }

var errWrite = errors.New("write failed")

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func newTestRouter(t *testing.T, paths ...string) (*Router, *doubler) {
	t.Helper()
	rt := newDoubler(paths...)
	mgr := manager.New(rt)
	t.Cleanup(func() { require.NoError(t, mgr.Close()) })
	return NewRouter(mgr), rt
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

func args(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}
