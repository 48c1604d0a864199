package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeTimeout = "timeout"
	OutcomeNetwork = "network"
	OutcomeRemote  = "remote"
	OutcomeDecode  = "decode"
)

// Recorder counts outbound calls to the remote service.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder on its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mastosql_remote_requests_total",
				Help: "Outbound requests to the remote service by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mastosql_remote_request_duration_seconds",
				Help:    "Latency of outbound requests to the remote service.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
	}
	r.registry.MustRegister(r.requests, r.duration)
	return r
}

// Observe records one finished call.
func (r *Recorder) Observe(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(operation, outcome).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Count returns the current counter value for operation and outcome.
func (r *Recorder) Count(operation, outcome string) float64 {
	if r == nil {
		return 0
	}
	m, err := r.registry.Gather()
	if err != nil {
		return 0
	}
	for _, mf := range m {
		if mf.GetName() != "mastosql_remote_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			var op, out string
			for _, lp := range metric.GetLabel() {
				switch lp.GetName() {
				case "operation":
					op = lp.GetValue()
				case "outcome":
					out = lp.GetValue()
				}
			}
			if op == operation && out == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
