package endpoint

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts published requests by route and outcome and records their
// latency.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "endpoint_requests_total",
			Help: "The total number of requests served by published routes",
		}, []string{"method", "route", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "endpoint_request_duration_seconds",
			Help:    "Time from route dispatch until the response was written",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Requests returns the request counter, labelled by method, route and outcome.
func (m *Metrics) Requests() *prometheus.CounterVec { return m.requests }

func (m *Metrics) observe(d Descriptor, outcome Outcome, latency time.Duration) {
	m.requests.WithLabelValues(d.Method, d.Name, string(outcome)).Inc()
	m.duration.WithLabelValues(d.Method, d.Name).Observe(latency.Seconds())
}
