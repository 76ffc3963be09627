package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	providerRequests  *prometheus.CounterVec
	providerLatency   *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec
	signalsCreated    *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	dispatches        *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
}

var (
	instance *Recorder
	once     sync.Once
)

// New returns the process-wide Prometheus metrics recorder. Collectors
// register on the default registry exactly once.
func New() *Recorder {
	once.Do(func() {
		instance = newRecorder()
	})
	return instance
}

func newRecorder() *Recorder {
	return &Recorder{
		providerRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalhub_provider_requests_total",
				Help: "Total upstream provider requests",
			},
			[]string{"provider", "op", "result"},
		),
		providerLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalhub_provider_request_seconds",
				Help:    "Upstream provider request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalhub_cache_lookups_total",
				Help: "Resolution cache lookups by outcome",
			},
			[]string{"cache", "outcome"},
		),
		signalsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalhub_signals_created_total",
				Help: "Total signals created",
			},
			[]string{"pair"},
		),
		statusTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalhub_status_transitions_total",
				Help: "Total signal status transitions",
			},
			[]string{"status"},
		),
		dispatches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalhub_dispatches_total",
				Help: "Push dispatch attempts",
			},
			[]string{"kind", "result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalhub_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordProviderRequest records an upstream provider call outcome.
func (r *Recorder) RecordProviderRequest(provider, op, result string) {
	r.providerRequests.WithLabelValues(provider, op, result).Inc()
}

// RecordProviderLatency records upstream call latency in seconds.
func (r *Recorder) RecordProviderLatency(provider string, seconds float64) {
	r.providerLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordCacheLookup records a resolution cache lookup outcome
// (hit, miss, stale).
func (r *Recorder) RecordCacheLookup(cache, outcome string) {
	r.cacheLookups.WithLabelValues(cache, outcome).Inc()
}

// RecordSignalCreated records a created signal.
func (r *Recorder) RecordSignalCreated(pair string) {
	r.signalsCreated.WithLabelValues(pair).Inc()
}

// RecordStatusTransition records a lifecycle transition.
func (r *Recorder) RecordStatusTransition(status string) {
	r.statusTransitions.WithLabelValues(status).Inc()
}

// RecordDispatch records a push dispatch attempt.
func (r *Recorder) RecordDispatch(kind, result string) {
	r.dispatches.WithLabelValues(kind, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
