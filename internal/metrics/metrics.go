package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the mutation and ingest counters.
const (
	OutcomeSuccess   = "success"
	OutcomeDuplicate = "duplicate"
	OutcomeConflict  = "conflict"
	OutcomeInvalid   = "invalid"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
	OutcomeSkipped   = "skipped"
)

// Metrics provides observability for registry mutations, bulk loads and
// the HTTP surface. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Mutations       *prometheus.CounterVec
	IngestRows      *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers every metric with reg. Passing nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "swift_registry_mutations_total",
			Help: "Registry inserts and deletes by operation and outcome",
		}, []string{"op", "outcome"}),
		IngestRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "swift_registry_ingest_rows_total",
			Help: "Rows read by the bulk loader by outcome",
		}, []string{"outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "swift_registry_http_request_duration_seconds",
			Help:    "Latency of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveMutation counts one insert or delete.
func (m *Metrics) ObserveMutation(op, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op, outcome).Inc()
}

// ObserveIngest counts n loader rows with the same outcome.
func (m *Metrics) ObserveIngest(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.IngestRows.WithLabelValues(outcome).Add(float64(n))
}

// ObserveRequest records the latency of a served request.
// Call with time.Now() taken before the handler ran.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
