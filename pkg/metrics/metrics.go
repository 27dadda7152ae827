package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	RetirementOutcomes  *prometheus.CounterVec
	ImportRows          *prometheus.CounterVec
	CertificatesCreated *prometheus.CounterVec
	StatsDuration       prometheus.Histogram
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "personnel_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "personnel_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		RetirementOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "personnel_retirement_calculations_total",
			Help: "Retirement date calculations by outcome",
		}, []string{"outcome"}),
		ImportRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "personnel_import_rows_total",
			Help: "Spreadsheet rows processed by status",
		}, []string{"status"}),
		CertificatesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "personnel_certificates_generated_total",
			Help: "Certificates generated by kind",
		}, []string{"kind"}),
		StatsDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "personnel_stats_duration_seconds",
			Help:    "Duration of dashboard statistics aggregation (cache misses only)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// NewNop returns collectors bound to a private registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, start time.Time) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// IncrementRetirement records a calculation outcome.
func (m *Metrics) IncrementRetirement(outcome string) {
	m.RetirementOutcomes.WithLabelValues(outcome).Inc()
}

// AddImportRows records processed rows for a status (created, updated, failed).
func (m *Metrics) AddImportRows(status string, n int) {
	if n > 0 {
		m.ImportRows.WithLabelValues(status).Add(float64(n))
	}
}

// IncrementCertificate records a generated certificate.
func (m *Metrics) IncrementCertificate(kind string) {
	m.CertificatesCreated.WithLabelValues(kind).Inc()
}

// ObserveStats records the duration of a statistics aggregation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveStats(start time.Time) {
	m.StatsDuration.Observe(time.Since(start).Seconds())
}
