// Package stats keeps the per-session observation log and derives rolling,
// rank-weighted latency and throughput figures from it.
package stats

import "sync"

// WindowSize is the number of most recent observations that influence the
// derived metrics.
const WindowSize = 5

// Observation is one completed inference batch.
type Observation struct {
	ItemCount          int
	DurationMicros     int64
	AverageMemoryBytes int64
}

// Metrics is the derived view of a log. A nil field means no data; it is
// never coerced to zero.
type Metrics struct {
	LastBatchTimeMs      *float64 `json:"last_batch_time_ms"`
	AverageBatchTimeMs   *float64 `json:"average_batch_time_ms"`
	PredictionsPerSecond *float64 `json:"predictions_per_second"`
	LastMemoryBytes      *int64   `json:"last_memory_bytes"`
}

// Log is an append-only sequence of observations. The zero value is an
// empty, unbounded log ready for use.
type Log struct {
	mu  sync.Mutex
	obs []Observation
	// maxHistory caps retained observations; 0 keeps everything. Values
	// below WindowSize are raised to WindowSize.
	maxHistory int
}

// NewLog returns an empty log retaining at most maxHistory observations
// (0 = unbounded).
func NewLog(maxHistory int) *Log {
	if maxHistory > 0 && maxHistory < WindowSize {
		maxHistory = WindowSize
	}
	return &Log{maxHistory: maxHistory}
}

// Update appends one observation.
func (l *Log) Update(itemCount int, durationMicros, avgMemoryBytes int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.obs = append(l.obs, Observation{
		ItemCount:          itemCount,
		DurationMicros:     durationMicros,
		AverageMemoryBytes: avgMemoryBytes,
	})
	if l.maxHistory > 0 && len(l.obs) > l.maxHistory {
		drop := len(l.obs) - l.maxHistory
		l.obs = append(l.obs[:0:0], l.obs[drop:]...)
	}
}

// Reset empties the log.
func (l *Log) Reset() {
	l.mu.Lock()
	l.obs = nil
	l.mu.Unlock()
}

// Len returns the number of retained observations.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.obs)
}

// Observations returns a copy of the retained log, oldest first.
func (l *Log) Observations() []Observation {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Observation, len(l.obs))
	copy(out, l.obs)
	return out
}

// Generate computes the metrics over the most recent WindowSize
// observations. The i-th observation of the window (oldest first) carries
// weight i+1.
func (l *Log) Generate() Metrics {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.obs) == 0 {
		return Metrics{}
	}
	start := len(l.obs) - WindowSize
	if start < 0 {
		start = 0
	}
	window := l.obs[start:]
	n := len(window)
	last := window[n-1]

	var weightedMs, weightedItems, weightedSeconds float64
	for i, o := range window {
		w := float64(i + 1)
		weightedMs += w * float64(o.DurationMicros) / 1000
		weightedItems += w * float64(o.ItemCount)
		weightedSeconds += w * float64(o.DurationMicros) / 1_000_000
	}
	weightSum := float64(n*(n+1)) / 2

	lastMs := float64(last.DurationMicros) / 1000
	avgMs := weightedMs / weightSum
	mem := last.AverageMemoryBytes
	m := Metrics{
		LastBatchTimeMs:    &lastMs,
		AverageBatchTimeMs: &avgMs,
		LastMemoryBytes:    &mem,
	}
	if weightedSeconds != 0 {
		pps := weightedItems / weightedSeconds
		m.PredictionsPerSecond = &pps
	}
	return m
}
