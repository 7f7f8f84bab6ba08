package monitoring

import (
	"github.com/user/scrapeflow/internal/flow"
	"github.com/user/scrapeflow/pkg/metrics"
)

// PromSink feeds attempt events into the Prometheus collectors. Counter and
// histogram updates never block, which satisfies the core's fire-and-forget
// sink contract without extra buffering.
type PromSink struct{}

// NewPromSink returns a sink backed by the process-global collectors.
// pkg/metrics.Init must have run first.
func NewPromSink() flow.Sink {
	return PromSink{}
}

func (PromSink) Record(ev flow.Event) {
	outcome := "success"
	if !ev.Success {
		outcome = "failure"
	}
	metrics.AttemptsTotal.WithLabelValues(ev.Workflow, ev.Step, outcome, ev.ErrKind).Inc()
	metrics.AttemptDuration.WithLabelValues(ev.Workflow, ev.Step).Observe(ev.Duration.Seconds())
}
