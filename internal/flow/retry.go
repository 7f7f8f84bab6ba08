package flow

import (
	"context"
	"log/slog"
	"time"
)

// Action is the unit of work the core knows how to run: anything that returns
// a value or fails with a classifiable error. The workflow context is shared
// mutable state; actions signal context updates by mutating it directly.
type Action func(ctx context.Context, wctx *Context) (any, error)

// Executor wraps a single fallible action with classification and backoff to
// produce bounded, delayed re-attempts.
type Executor struct {
	policy RetryPolicy
	sink   Sink
	logger *slog.Logger
}

// NewExecutor builds an executor. A nil sink or logger falls back to no-ops.
func NewExecutor(policy RetryPolicy, sink Sink, logger *slog.Logger) *Executor {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{policy: policy, sink: sink, logger: logger}
}

// Execute runs fn until it succeeds, fails fatally, or exhausts the policy's
// retry budget. It returns the result, the total number of attempts made, and
// the terminal error (a *Error for fatal failures, a *RetriesExhaustedError
// once the budget is spent). Every attempt is reported to the sink; reporting
// never influences the retry decision.
func (e *Executor) Execute(ctx context.Context, workflow, step string, fn Action, wctx *Context) (any, int, error) {
	for attempt := 1; ; attempt++ {
		start := time.Now()
		result, err := fn(ctx, wctx)
		duration := time.Since(start)

		if err == nil {
			e.record(workflow, step, attempt, true, duration, "")
			return result, attempt, nil
		}

		cerr := Classify(err)
		e.record(workflow, step, attempt, false, duration, cerr.Kind.String())

		if !cerr.Kind.Retryable() {
			e.logger.Error("action failed fatally",
				"workflow", workflow, "step", step, "attempt", attempt, "error", cerr)
			return nil, attempt, cerr
		}

		retries := attempt - 1
		if retries >= e.policy.MaxRetries {
			e.logger.Error("retries exhausted",
				"workflow", workflow, "step", step, "attempts", attempt, "error", cerr)
			return nil, attempt, &RetriesExhaustedError{Attempts: attempt, Last: cerr}
		}

		delay := Backoff(attempt, e.policy)
		if cerr.Kind == KindRateLimited && cerr.RetryAfter > delay {
			delay = cerr.RetryAfter
		}

		e.logger.Warn("action failed, retrying",
			"workflow", workflow, "step", step,
			"attempt", attempt, "max_attempts", e.policy.MaxRetries+1,
			"kind", cerr.Kind.String(), "delay_ms", delay.Milliseconds(), "error", cerr)

		select {
		case <-ctx.Done():
			return nil, attempt, NewTimeout(ctx.Err())
		case <-time.After(delay):
		}
	}
}

func (e *Executor) record(workflow, step string, attempt int, success bool, d time.Duration, kind string) {
	e.sink.Record(Event{
		Time:     time.Now(),
		Workflow: workflow,
		Step:     step,
		Attempt:  attempt,
		Success:  success,
		Duration: d,
		ErrKind:  kind,
	})
}
