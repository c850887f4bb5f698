// Package backend is a small manifest-driven model runtime. A serving path
// names a manifest file whose outputs are element-wise functions of its
// inputs, which is enough to exercise the session lifecycle end to end
// without an external inference engine.
package backend

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"modelpipe/internal/common/fsutil"
	"modelpipe/internal/config"
	"modelpipe/internal/manager"
	"modelpipe/pkg/types"
)

// bytesPerElement is the memory estimate charged per element read or
// written during a batch.
const bytesPerElement = 8

var errClosed = errors.New("model is closed")

// Runtime loads manifests from the filesystem.
type Runtime struct {
	log zerolog.Logger
}

// New returns a Runtime. A nil logger disables logging.
func New(logger *zerolog.Logger) *Runtime {
	rt := &Runtime{log: zerolog.Nop()}
	if logger != nil {
		rt.log = logger.With().Str("component", "backend").Logger()
	}
	return rt
}

// Load reads and validates the manifest at path. A path that does not
// exist, or names a directory, yields manager.ErrPathNotFound.
func (r *Runtime) Load(ctx context.Context, path string) (manager.LoadedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := fsutil.Resolve(path)
	if err != nil {
		return nil, manager.ErrRuntime("resolve "+path, err)
	}
	ok, isDir, err := fsutil.StatKind(abs)
	if err != nil {
		return nil, manager.ErrRuntime("stat "+path, err)
	}
	if !ok || isDir {
		return nil, manager.ErrPathNotFound(path)
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return nil, manager.ErrRuntime("read "+path, err)
	}
	var mf Manifest
	if err := config.Decode(abs, b, &mf); err != nil {
		return nil, manager.ErrRuntime("decode manifest "+path, err)
	}
	if err := mf.Validate(); err != nil {
		return nil, manager.ErrRuntime("invalid manifest "+path, err)
	}
	sum := blake3.Sum256(b)
	m := &Model{
		manifest: mf,
		sig:      mf.Signature(),
		digest:   "blake3:" + hex.EncodeToString(sum[:]),
	}
	r.log.Debug().Str("path", abs).Str("name", mf.Name).Str("digest", m.digest).Int("outputs", len(mf.Outputs)).Msg("manifest loaded")
	return m, nil
}

// Model is a loaded manifest.
type Model struct {
	manifest Manifest
	sig      types.Signature
	digest   string

	mu     sync.Mutex
	closed bool
}

// Signature implements manager.LoadedModel.
func (m *Model) Signature() types.Signature { return m.sig }

// Digest returns the BLAKE3 hash of the manifest bytes.
func (m *Model) Digest() string { return m.digest }

// Execute evaluates every output for every instance and returns one column
// per output in manifest order.
func (m *Model) Execute(ctx context.Context, instances []types.Instance, trace bool) (manager.ExecResult, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return manager.ExecResult{}, errClosed
	}
	start := time.Now()
	cols := make([][]any, len(m.manifest.Outputs))
	for i := range cols {
		cols[i] = make([]any, 0, len(instances))
	}
	var elements int64
	for n, inst := range instances {
		if err := ctx.Err(); err != nil {
			return manager.ExecResult{}, err
		}
		inputs := make(map[string]tensor, len(m.manifest.Inputs))
		for name, spec := range m.manifest.Inputs {
			raw, ok := inst[name]
			if !ok {
				return manager.ExecResult{}, fmt.Errorf("instance %d: missing input %q", n, name)
			}
			t, err := toTensor(raw)
			if err != nil {
				return manager.ExecResult{}, fmt.Errorf("instance %d: input %q: %w", n, name, err)
			}
			if !t.conforms(spec.Shape) {
				return manager.ExecResult{}, fmt.Errorf("instance %d: input %q has shape %v, declared %v", n, name, t.shape, spec.Shape)
			}
			inputs[name] = t
			elements += int64(len(t.data))
		}
		for i, o := range m.manifest.Outputs {
			args := make([]tensor, len(o.Args))
			for j, a := range o.Args {
				args[j] = inputs[a]
			}
			out, err := apply(o.Op, args)
			if err != nil {
				return manager.ExecResult{}, fmt.Errorf("instance %d: output %q: %w", n, o.Name, err)
			}
			v, err := out.value()
			if err != nil {
				return manager.ExecResult{}, fmt.Errorf("instance %d: output %q: %w", n, o.Name, err)
			}
			cols[i] = append(cols[i], v)
			elements += int64(len(out.data))
		}
	}
	res := manager.ExecResult{Outputs: cols}
	if trace {
		res.Trace = &manager.Trace{
			DurationMicros: time.Since(start).Microseconds(),
			MemoryBytes:    elements * bytesPerElement,
			ItemCount:      len(instances),
		}
	}
	return res, nil
}

// Close marks the model unusable. Idempotent.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
