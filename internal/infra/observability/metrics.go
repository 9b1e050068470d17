package observability

import (
	"time"

	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for loanhub.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	emiCalculations *prometheus.CounterVec
	productQueries  *prometheus.CounterVec
	authEvents      *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loanhub_request_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		emiCalculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanhub_emi_calculations_total",
				Help: "EMI calculations by outcome.",
			},
			[]string{"status"},
		),
		productQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanhub_product_queries_total",
				Help: "Product catalog queries by store.",
			},
			[]string{"store"},
		),
		authEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanhub_auth_events_total",
				Help: "Authentication events.",
			},
			[]string{"event"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanhub_store_errors_total",
				Help: "Store failures surfaced to callers.",
			},
			[]string{"store"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrEMICalculation counts an EMI calculation; status is "ok" or "invalid".
func (m *Metrics) IncrEMICalculation(status string) {
	m.emiCalculations.WithLabelValues(status).Inc()
}

// IncrProductQuery counts a catalog query against store.
func (m *Metrics) IncrProductQuery(store string) {
	m.productQueries.WithLabelValues(store).Inc()
}

// IncrAuthEvent counts register, login, login_failed, logout and similar events.
func (m *Metrics) IncrAuthEvent(event string) {
	m.authEvents.WithLabelValues(event).Inc()
}

// IncrStoreError counts a store failure.
func (m *Metrics) IncrStoreError(store string) {
	m.storeErrors.WithLabelValues(store).Inc()
}

// Snapshot returns the cumulative counters for the GET /api/stats endpoint.
func (m *Metrics) Snapshot() *domain.UsageStats {
	return &domain.UsageStats{
		EMICalculations: int64(getCounterValue(m.emiCalculations, "ok")),
		EMIRejected:     int64(getCounterValue(m.emiCalculations, "invalid")),
		ProductQueries:  int64(sumCounter(m.productQueries)),
		Registrations:   int64(getCounterValue(m.authEvents, "register")),
		Logins:          int64(getCounterValue(m.authEvents, "login")),
		LoginFailures:   int64(getCounterValue(m.authEvents, "login_failed")),
		StoreErrors:     int64(sumCounter(m.storeErrors)),
		Period:          "since_start",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounter adds up every label combination of cv.
func sumCounter(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var total float64
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}
