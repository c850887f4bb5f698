// Package httpapi is the optional admin listener: health and readiness
// probes, a status snapshot, a server-sent event stream of session
// lifecycle events and Prometheus metrics. It never carries protocol
// traffic.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelpipe/pkg/types"
)

// Service defines the methods required by the admin layer.
type Service interface {
	Status() types.StatusResponse
	Ready() bool
}

// NewMux builds the admin router. events may be nil, in which case
// /events is not mounted.
func NewMux(svc Service, events http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(requestLogger)
	if corsOpts != nil {
		r.Use(cors.Handler(*corsOpts))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(svc))
	r.Get("/status", status(svc))
	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)
	return r
}

// healthz godoc
// @Summary      Liveness probe
// @Tags         admin
// @Produce      plain
// @Success      200  {string}  string  "ok"
// @Router       /healthz [get]
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyz godoc
// @Summary      Readiness probe
// @Description  200 once a model session is loaded, 503 before.
// @Tags         admin
// @Produce      plain
// @Success      200  {string}  string  "ready"
// @Failure      503  {string}  string  "no session"
// @Router       /readyz [get]
func readyz(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no session"))
	}
}

// status godoc
// @Summary      Service status
// @Description  Session, counters and rolling stats. CBOR with ?format=cbor or Accept: application/cbor.
// @Tags         admin
// @Produce      json
// @Produce      application/cbor
// @Param        format  query     string  false  "json or cbor"
// @Success      200     {object}  types.StatusResponse
// @Router       /status [get]
func status(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, svc.Status())
	}
}
