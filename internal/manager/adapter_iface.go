package manager

import (
	"context"

	"modelpipe/pkg/types"
)

// ModelRuntime abstracts the computation backend used by the Manager.
// Concrete implementations (e.g., the manifest backend) satisfy this
// interface; tests use an in-memory fake.
type ModelRuntime interface {
	// Load opens the model artifact named by path. A missing artifact should
	// be reported with ErrPathNotFound so callers can tell it apart from a
	// backend failure.
	Load(ctx context.Context, path string) (LoadedModel, error)
}

// LoadedModel is the runtime handle of one loaded model. The Manager owns it
// exclusively and calls Close exactly once.
type LoadedModel interface {
	// Signature reports the model's input and output tensors.
	Signature() types.Signature
	// Execute runs one batch. Outputs are returned as columns in output
	// signature order, each holding one value per instance. When trace is
	// set the runtime should also report execution metrics.
	Execute(ctx context.Context, instances []types.Instance, trace bool) (ExecResult, error)
	// Close releases any resources associated with the model.
	Close() error
}

// Digester is optionally implemented by a LoadedModel that can fingerprint
// the artifact it was loaded from.
type Digester interface {
	Digest() string
}

// ExecResult is the outcome of one Execute call.
type ExecResult struct {
	Outputs [][]any
	// Trace is nil unless requested and supported.
	Trace *Trace
}

// Trace carries execution metrics for one batch.
type Trace struct {
	DurationMicros int64
	// MemoryBytes is the total estimate for the whole batch.
	MemoryBytes int64
	ItemCount   int
}
