package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// StepStatus tracks one step through the run state machine:
// Pending -> Skipped | Running -> Succeeded | Failed.
type StepStatus int

const (
	StatusPending StepStatus = iota
	StatusSkipped
	StatusRunning
	StatusSucceeded
	StatusFailed
)

func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSkipped:
		return "skipped"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Condition gates a step on the current context. A nil condition always
// passes. Conditions that panic count as false.
type Condition func(wctx *Context) bool

// Step is one named unit of a workflow. Steps are immutable once added;
// insertion order is execution order.
type Step struct {
	Name      string
	Action    Action
	Required  bool
	Retryable bool
	Condition Condition
	OnSuccess func(result any, wctx *Context)
	OnError   func(err error, wctx *Context)
}

// StepOutcome is the per-step record in a run result.
type StepOutcome struct {
	Name        string
	Status      StepStatus
	Attempts    int
	Err         error
	CallbackErr error
}

// Result is the output of one workflow run. Success is true iff no required
// step failed terminally. Values is the final state of the shared context,
// including mutations from steps that succeeded before a later halt.
type Result struct {
	RunID     string
	Success   bool
	Steps     []StepOutcome
	FinalData map[string]any
	Values    map[string]any
}

// Acquirer is the rate-limiter contract the engine needs: permission before
// every action invocation, including each retry attempt.
type Acquirer interface {
	Acquire(ctx context.Context) error
}

// AdaptiveAcquirer is an Acquirer that reacts to upstream feedback. The engine
// reports every rate-limited failure and every success back to it.
type AdaptiveAcquirer interface {
	Acquirer
	SlowDown()
	SpeedUp()
}

// Workflow sequences named steps over a shared mutable context.
type Workflow struct {
	name     string
	steps    []Step
	ctx      *Context
	policy   RetryPolicy
	limiter  Acquirer
	sink     Sink
	logger   *slog.Logger
	buildErr error
}

// Option configures a workflow at construction.
type Option func(*Workflow)

// WithRetryPolicy sets the policy used for retryable steps.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(w *Workflow) { w.policy = p }
}

// WithLimiter gates every action invocation on the given limiter.
func WithLimiter(l Acquirer) Option {
	return func(w *Workflow) { w.limiter = l }
}

// WithSink routes attempt events to the given sink.
func WithSink(s Sink) Option {
	return func(w *Workflow) { w.sink = s }
}

// WithLogger sets the run logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// WithValues seeds the shared context.
func WithValues(values map[string]any) Option {
	return func(w *Workflow) { w.ctx.MergeMap(values) }
}

// NewWorkflow builds an empty workflow with default policy, no limiter and a
// no-op sink.
func NewWorkflow(name string, opts ...Option) *Workflow {
	w := &Workflow{
		name:   name,
		ctx:    NewContext(nil),
		policy: DefaultRetryPolicy(),
		sink:   NopSink{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddStep appends a step. Names must be non-empty and unique within the
// workflow; violations surface as an error from Run.
func (w *Workflow) AddStep(s Step) *Workflow {
	if w.buildErr != nil {
		return w
	}
	if s.Name == "" {
		w.buildErr = fmt.Errorf("workflow %s: step name must not be empty", w.name)
		return w
	}
	if s.Action == nil {
		w.buildErr = fmt.Errorf("workflow %s: step %s has no action", w.name, s.Name)
		return w
	}
	for _, existing := range w.steps {
		if existing.Name == s.Name {
			w.buildErr = fmt.Errorf("workflow %s: duplicate step name %s", w.name, s.Name)
			return w
		}
	}
	w.steps = append(w.steps, s)
	return w
}

// Context returns the shared context so callers can seed or inspect it. It is
// owned by one in-flight run at a time.
func (w *Workflow) Context() *Context {
	return w.ctx
}

// Run executes the steps strictly in insertion order. A required step that
// fails terminally halts the run immediately; remaining steps stay Pending.
// Optional failures are recorded and the run continues. Context mutations
// from completed steps are never rolled back. The supplied context carries
// the overall deadline budget; exceeding it is classified as a timeout and
// handled as a normal failure.
func (w *Workflow) Run(ctx context.Context) (*Result, error) {
	if w.buildErr != nil {
		return nil, w.buildErr
	}
	if err := w.policy.Validate(); err != nil {
		return nil, fmt.Errorf("workflow %s: %w", w.name, err)
	}

	result := &Result{
		RunID:     uuid.New().String(),
		Success:   true,
		Steps:     make([]StepOutcome, len(w.steps)),
		FinalData: make(map[string]any),
	}
	for i, s := range w.steps {
		result.Steps[i] = StepOutcome{Name: s.Name, Status: StatusPending}
	}

	executor := NewExecutor(w.policy, w.sink, w.logger)
	w.logger.Info("workflow started", "workflow", w.name, "run_id", result.RunID, "steps", len(w.steps))

	for i := range w.steps {
		step := w.steps[i]
		outcome := &result.Steps[i]

		if !w.shouldRun(step) {
			outcome.Status = StatusSkipped
			w.logger.Info("step skipped", "workflow", w.name, "step", step.Name)
			continue
		}

		outcome.Status = StatusRunning
		value, attempts, err := w.invoke(ctx, executor, step)
		outcome.Attempts = attempts

		if err != nil {
			outcome.Status = StatusFailed
			outcome.Err = err
			if step.OnError != nil {
				outcome.CallbackErr = w.safeCall(step.Name, func() { step.OnError(err, w.ctx) })
			}
			if step.Required {
				result.Success = false
				w.logger.Error("required step failed, halting run",
					"workflow", w.name, "run_id", result.RunID, "step", step.Name, "error", err)
				break
			}
			w.logger.Warn("optional step failed, continuing",
				"workflow", w.name, "run_id", result.RunID, "step", step.Name, "error", err)
			continue
		}

		outcome.Status = StatusSucceeded
		result.FinalData[step.Name] = value
		w.ctx.Set(step.Name, value)
		if step.OnSuccess != nil {
			outcome.CallbackErr = w.safeCall(step.Name, func() { step.OnSuccess(value, w.ctx) })
		}
	}

	result.Values = w.ctx.Values()
	w.logger.Info("workflow finished",
		"workflow", w.name, "run_id", result.RunID, "success", result.Success)
	return result, nil
}

// shouldRun evaluates the step condition; panics count as false, matching the
// contract that a broken condition skips rather than fails the step.
func (w *Workflow) shouldRun(step Step) (ok bool) {
	if step.Condition == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Warn("condition panicked, skipping step",
				"workflow", w.name, "step", step.Name, "panic", r)
			ok = false
		}
	}()
	return step.Condition(w.ctx)
}

// invoke runs a step's action, gated by the limiter on every attempt.
// Retryable steps go through the retry executor; the rest run exactly once.
func (w *Workflow) invoke(ctx context.Context, executor *Executor, step Step) (any, int, error) {
	action := step.Action
	if w.limiter != nil {
		adaptive, _ := w.limiter.(AdaptiveAcquirer)
		inner := action
		action = func(ctx context.Context, wctx *Context) (any, error) {
			if err := w.limiter.Acquire(ctx); err != nil {
				return nil, err
			}
			value, err := inner(ctx, wctx)
			if adaptive != nil {
				if err == nil {
					adaptive.SpeedUp()
				} else if Classify(err).Kind == KindRateLimited {
					adaptive.SlowDown()
				}
			}
			return value, err
		}
	}

	if step.Retryable {
		return executor.Execute(ctx, w.name, step.Name, action, w.ctx)
	}

	start := time.Now()
	value, err := action(ctx, w.ctx)
	duration := time.Since(start)
	if err != nil {
		cerr := Classify(err)
		w.sink.Record(Event{
			Time: time.Now(), Workflow: w.name, Step: step.Name,
			Attempt: 1, Success: false, Duration: duration, ErrKind: cerr.Kind.String(),
		})
		return nil, 1, cerr
	}
	w.sink.Record(Event{
		Time: time.Now(), Workflow: w.name, Step: step.Name,
		Attempt: 1, Success: true, Duration: duration,
	})
	return value, 1, nil
}

// safeCall shields the run from panicking callbacks. The panic is recorded on
// the outcome but never alters step status.
func (w *Workflow) safeCall(step string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step %s callback panicked: %v", step, r)
			w.logger.Warn("callback panicked", "workflow", w.name, "step", step, "panic", r)
		}
	}()
	fn()
	return nil
}
