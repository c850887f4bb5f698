package types

// Instance is one input record of a run request: input name to a scalar or
// (nested) array value.
// example: {"x": [1, 2, 3], "scale": 2}
type Instance map[string]any

// OutputRecord is one result record of a run request: output key to the
// value produced for the matching instance.
type OutputRecord map[string]any

// TensorSpec describes one tensor of a model signature.
type TensorSpec struct {
	// Element type, e.g. float32, int64, string.
	// example: float32
	DType string `json:"dtype" yaml:"dtype" toml:"dtype" example:"float32"`
	// Dimensions; -1 marks a dimension of unknown size.
	// example: [-1, 3]
	Shape []int64 `json:"shape" yaml:"shape" toml:"shape"`
}

// NamedTensor pairs a tensor name with its description. Used where the
// order of tensors is significant.
type NamedTensor struct {
	// Tensor name.
	// example: scores
	Name string `json:"name" example:"scores"`
	TensorSpec
}

// Signature is the input/output contract of a loaded model. Outputs are
// ordered: the runtime returns output columns in this order.
type Signature struct {
	Inputs  map[string]TensorSpec
	Outputs []NamedTensor
}

// ModelInfoResponse is the MODEL_INFO payload.
type ModelInfoResponse struct {
	// Serving path of the loaded model.
	// example: /models/adder.yaml
	Path string `json:"path" example:"/models/adder.yaml"`
	// Session identifier assigned at load time.
	// example: 01J9Z3M4W8X0C2B3N4P5Q6R7S8
	SessionID string `json:"session_id" example:"01J9Z3M4W8X0C2B3N4P5Q6R7S8"`
	// Input tensors sorted by name.
	Inputs []NamedTensor `json:"inputs"`
	// Output tensors in signature order.
	Outputs []NamedTensor `json:"outputs"`
	// Runtime-provided artifact digest, when available.
	Digest string `json:"digest,omitempty"`
}

// StatsResponse is the MODEL_STATS payload. Null fields mean no data.
type StatsResponse struct {
	// Duration of the most recent batch in milliseconds.
	// example: 12.5
	LastBatchTimeMs *float64 `json:"last_batch_time_ms" example:"12.5"`
	// Rank-weighted mean batch duration over the recent window.
	// example: 11.8
	AverageBatchTimeMs *float64 `json:"average_batch_time_ms" example:"11.8"`
	// Rank-weighted throughput over the recent window.
	// example: 240
	PredictionsPerSecond *float64 `json:"predictions_per_second" example:"240"`
	// Mean per-item memory estimate of the most recent batch.
	// example: 4096
	LastMemoryBytes *int64 `json:"last_memory_bytes" example:"4096"`
	// Number of observations recorded for the session.
	// example: 7
	Observations int `json:"observations" example:"7"`
}

// ErrorResponse is a consistent JSON error payload for the admin API.
type ErrorResponse struct {
	// Error message.
	// example: not found
	Error string `json:"error" example:"not found"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// SessionStatus summarizes the active session for /status.
type SessionStatus struct {
	// Session identifier.
	SessionID string `json:"session_id" cbor:"session_id"`
	// Serving path of the loaded model.
	Path string `json:"path" cbor:"path"`
	// Load time (unix seconds).
	// example: 1700000000
	LoadedAt int64 `json:"loaded_at_unix" cbor:"loaded_at_unix" example:"1700000000"`
	// Metrics derived from the session's observation log.
	Stats StatsResponse `json:"stats" cbor:"stats"`
}

// StatusResponse is returned by GET /status on the admin listener.
type StatusResponse struct {
	// Process instance identifier.
	InstanceID string `json:"instance_id" cbor:"instance_id"`
	// Active session, absent when nothing is loaded.
	Session *SessionStatus `json:"session,omitempty" cbor:"session,omitempty"`
	// Last load error observed by the manager (if any).
	LastError string `json:"last_error,omitempty" cbor:"last_error,omitempty"`
	// Total successful loads since start.
	// example: 3
	LoadsTotal uint64 `json:"loads_total" cbor:"loads_total" example:"3"`
	// Total runs executed since start.
	// example: 120
	RunsTotal uint64 `json:"runs_total" cbor:"runs_total" example:"120"`
	// Uptime of the process in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" cbor:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" cbor:"server_time_unix" example:"1700000000"`
}
