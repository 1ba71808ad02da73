package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	LoginAttempts *prometheus.CounterVec
	Selections    *prometheus.CounterVec
	Exports       *prometheus.CounterVec
	AlertsRaised  *prometheus.CounterVec
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LoginAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tawkr_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		Selections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tawkr_territory_selections_total",
				Help: "Territory selection decisions by outcome",
			},
			[]string{"outcome"},
		),
		Exports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tawkr_exports_total",
				Help: "Generated exports by format",
			},
			[]string{"format"},
		),
		AlertsRaised: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tawkr_alerts_raised_total",
				Help: "Alerts raised by level",
			},
			[]string{"level"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency labelled by chi route pattern,
// which keeps label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
