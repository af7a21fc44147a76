// Package metrics counts interview activity on a private Prometheus registry.
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "interview_agent"

// Metrics holds the client's counters.
type Metrics struct {
	registry *prometheus.Registry

	recordingsStarted   prometheus.Counter
	recordingsTimedOut  prometheus.Counter
	captureErrors       *prometheus.CounterVec
	captureRestarts     prometheus.Counter
	answersSubmitted    prometheus.Counter
	evaluationFailures  prometheus.Counter
	interviewsCompleted prometheus.Counter
	apiCalls            *prometheus.CounterVec
	apiLatency          *prometheus.HistogramVec
}

// New creates the metrics and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recordingsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_started_total",
			Help:      "Answer recordings started.",
		}),
		recordingsTimedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_timed_out_total",
			Help:      "Answer recordings stopped by the recording ceiling.",
		}),
		captureErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_errors_total",
			Help:      "Speech capture failures by kind.",
		}, []string{"kind"}),
		captureRestarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_restarts_total",
			Help:      "Speech capture runs that ended unexpectedly and were restarted.",
		}),
		answersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_submitted_total",
			Help:      "Answers sent for evaluation.",
		}),
		evaluationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluation_failures_total",
			Help:      "Submitted answers the service failed to evaluate.",
		}),
		interviewsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interviews_completed_total",
			Help:      "Interviews that reached a final report.",
		}),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_calls_total",
			Help:      "Evaluation API calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_call_duration_seconds",
			Help:      "Evaluation API call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"endpoint"}),
	}

	m.registry.MustRegister(
		m.recordingsStarted,
		m.recordingsTimedOut,
		m.captureErrors,
		m.captureRestarts,
		m.answersSubmitted,
		m.evaluationFailures,
		m.interviewsCompleted,
		m.apiCalls,
		m.apiLatency,
	)
	return m
}

// Registry exposes the registry for serving.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordingStarted() {
	if m != nil {
		m.recordingsStarted.Inc()
	}
}

func (m *Metrics) RecordingTimedOut() {
	if m != nil {
		m.recordingsTimedOut.Inc()
	}
}

func (m *Metrics) CaptureError(kind string) {
	if m != nil {
		m.captureErrors.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) CaptureRestarted() {
	if m != nil {
		m.captureRestarts.Inc()
	}
}

func (m *Metrics) AnswerSubmitted() {
	if m != nil {
		m.answersSubmitted.Inc()
	}
}

func (m *Metrics) EvaluationFailed() {
	if m != nil {
		m.evaluationFailures.Inc()
	}
}

func (m *Metrics) InterviewCompleted() {
	if m != nil {
		m.interviewsCompleted.Inc()
	}
}

// APICall records one evaluation API round trip.
func (m *Metrics) APICall(endpoint string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.apiCalls.WithLabelValues(endpoint, outcome).Inc()
	m.apiLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
