package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	adminRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modelpipe",
			Subsystem: "admin_http",
			Name:      "requests_total",
			Help:      "Admin HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	adminLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modelpipe",
			Subsystem: "admin_http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request latency",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"route", "method"},
	)

	adminInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelpipe",
			Subsystem: "admin_http",
			Name:      "inflight_requests",
			Help:      "Admin HTTP requests being served, open event streams included",
		},
	)

	sseSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modelpipe",
			Subsystem: "admin_http",
			Name:      "event_subscribers",
			Help:      "Connected /events subscribers",
		},
	)
)

func init() {
	prometheus.MustRegister(adminRequests, adminLatency, adminInflight, sseSubscribers)
}

// codeWriter remembers the status code written through it.
type codeWriter struct {
	http.ResponseWriter
	code int
}

func (cw *codeWriter) WriteHeader(code int) {
	cw.code = code
	cw.ResponseWriter.WriteHeader(code)
}

// Flush passes through so /events frames are not held back.
func (cw *codeWriter) Flush() {
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *codeWriter) Unwrap() http.ResponseWriter { return cw.ResponseWriter }

// MetricsMiddleware records request counts and latency per route.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminInflight.Inc()
		defer adminInflight.Dec()

		cw := &codeWriter{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(cw, r)

		route := routeLabel(r)
		adminRequests.WithLabelValues(route, r.Method, strconv.Itoa(cw.code)).Inc()
		adminLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// routeLabel prefers the chi route pattern, which is only set after
// routing, so label cardinality stays bounded.
func routeLabel(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return r.URL.Path
	}
	if p := rc.RoutePattern(); p != "" {
		return p
	}
	return r.URL.Path
}
