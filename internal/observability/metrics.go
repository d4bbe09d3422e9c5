package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the catalog service.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeOps        *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	combinations    prometheus.Histogram
}

// NewMetrics initialises a private registry with the HTTP and store metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	storeOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_store_operations_total",
		Help: "Durable store operations by operation and result.",
	}, []string{"operation", "result"})
	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_store_operation_duration_seconds",
		Help:    "Durable store operation latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	combinations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_variant_combinations",
		Help:    "Number of SKU combinations produced per generation.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
	registry.MustRegister(
		requests, duration, storeOps, storeDuration, combinations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		storeOps:        storeOps,
		storeDuration:   storeDuration,
		combinations:    combinations,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveStoreOperation records one durable store call.
func (m *Metrics) ObserveStoreOperation(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(operation, result).Inc()
	m.storeDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveCombinations records the size of a generated SKU set.
func (m *Metrics) ObserveCombinations(n int) {
	if m == nil {
		return
	}
	m.combinations.Observe(float64(n))
}

// Registerer exposes the registry for extra collectors such as job metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
