package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "autoremediator"

// instanceID separates the push groups of concurrent containers. It is set
// once per process, so a warm container keeps accumulating in its own group.
var instanceID = uuid.NewString()

// Recorder counts dispatches and remediation outcomes.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	dispatches *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Audit events dispatched, by pipeline and result status.",
		}, []string{"pipeline", "status"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Per-resource remediation outcomes, by pipeline and action.",
		}, []string{"pipeline", "action"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent handling one audit event.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 30, 60, 120, 300, 600},
		}, []string{"pipeline"}),
	}
	if reg != nil {
		reg.MustRegister(r.dispatches, r.outcomes, r.duration)
	}
	return r
}

// ObserveDispatch records one handled event
func (r *Recorder) ObserveDispatch(pipeline, status string, took time.Duration) {
	if r == nil {
		return
	}
	if pipeline == "" {
		pipeline = "none"
	}
	r.dispatches.WithLabelValues(pipeline, status).Inc()
	r.duration.WithLabelValues(pipeline).Observe(took.Seconds())
}

// ObserveOutcome records one per-resource outcome
func (r *Recorder) ObserveOutcome(pipeline, action string) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(pipeline, action).Inc()
}

// Push sends everything gathered by g to a Pushgateway under the given job.
// Lambda invocations are too short lived to be scraped.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Grouping("instance", instanceID).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
