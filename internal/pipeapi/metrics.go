package pipeapi

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelpipe",
			Subsystem: "pipe",
			Name:      "requests_total",
			Help:      "Total number of handled requests",
		},
		[]string{"command", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modelpipe",
			Subsystem: "pipe",
			Name:      "request_duration_seconds",
			Help:      "Duration of request handling in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	fatalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelpipe",
			Subsystem: "pipe",
			Name:      "fatal_errors_total",
			Help:      "Errors that terminated the service loop",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, fatalTotal)
}
