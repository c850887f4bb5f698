package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelpipe",
			Subsystem: "session",
			Name:      "loaded",
			Help:      "1 while a model session is loaded",
		},
	)

	sessionSwapsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelpipe",
			Subsystem: "session",
			Name:      "swaps_total",
			Help:      "Total number of successful session loads",
		},
	)

	loadFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "modelpipe",
			Subsystem: "session",
			Name:      "load_failures_total",
			Help:      "Total number of failed session loads",
		},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "modelpipe",
			Subsystem: "session",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of runtime Execute calls",
			Buckets:   prometheus.DefBuckets,
		},
	)

	lastBatchSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelpipe",
			Subsystem: "stats",
			Name:      "last_batch_seconds",
			Help:      "Duration of the most recently recorded batch",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionLoaded, sessionSwapsTotal, loadFailuresTotal, runDuration, lastBatchSeconds)
}
