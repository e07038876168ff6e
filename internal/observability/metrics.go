package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketplace"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	transitions  *prometheus.CounterVec
	reservations *prometheus.CounterVec
	assignments  *prometheus.CounterVec
	expiredDeals prometheus.Counter
	requests     *prometheus.CounterVec
	latencyMS    *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry, plus the Go and process collectors.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order transition attempts by target status and outcome.",
		}, []string{"to", "outcome"}),
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deal_reservations_total",
			Help:      "Inventory ledger operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rider_assignments_total",
			Help:      "Rider assignment operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		expiredDeals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deals_expired_total",
			Help:      "Deals retired by the expiry sweep.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		latencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
	}

	err := errors.Join(
		m.registry.Register(collectors.NewGoCollector()),
		m.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
		m.registry.Register(m.transitions),
		m.registry.Register(m.reservations),
		m.registry.Register(m.assignments),
		m.registry.Register(m.expiredDeals),
		m.registry.Register(m.requests),
		m.registry.Register(m.latencyMS),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveTransition counts a transition attempt towards status to.
func (m *Metrics) ObserveTransition(to string, err error) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to, Outcome(err)).Inc()
}

// ObserveReservation counts a reserve, commit or release.
func (m *Metrics) ObserveReservation(operation string, err error) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(operation, Outcome(err)).Inc()
}

// ObserveAssignment counts an assign or release of a rider.
func (m *Metrics) ObserveAssignment(operation string, err error) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(operation, Outcome(err)).Inc()
}

// AddExpiredDeals adds n retired deals.
func (m *Metrics) AddExpiredDeals(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.expiredDeals.Add(float64(n))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.latencyMS.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))
}

// Outcome labels err by its error kind, or "ok" for nil.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(errs.KindOf(err))
}
