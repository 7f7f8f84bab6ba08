package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/scrapeflow/internal/entity"
	"github.com/user/scrapeflow/internal/flow"
	"github.com/user/scrapeflow/internal/flowcfg"
	"github.com/user/scrapeflow/internal/repository"
	"github.com/user/scrapeflow/pkg/metrics"
)

const scrapeWorkflowName = "scrape"

// Worker drains the job queue and runs each job through the scrape workflow.
type Worker interface {
	// ProcessJobFromQueue handles a single queued job. Returns redis.Nil
	// wrapped errors as nil: an empty queue is a normal state.
	ProcessJobFromQueue(ctx context.Context) error
	// Run polls the queue until the context is cancelled.
	Run(ctx context.Context)
}

type scrapeWorker struct {
	queueRepo     repository.JobQueueRepository
	scrapers      map[string]repository.ScraperRepository
	runRepo       repository.RunRepository
	failedJobRepo repository.FailedJobRepository
	limiter       flow.Acquirer
	sink          flow.Sink
	policy        flow.RetryPolicy
	definition    *flowcfg.Definition
	jobTimeout    time.Duration
	pollPeriod    time.Duration
}

// NewWorker creates the scrape worker. The limiter is the session-wide rate
// gate shared by every concurrent job; pass nil to disable rate limiting.
// The sink observes every attempt. A non-nil definition replaces the built-in
// workflow; its actions are resolved against WorkflowActions.
func NewWorker(
	queueRepo repository.JobQueueRepository,
	scrapers map[string]repository.ScraperRepository,
	runRepo repository.RunRepository,
	failedJobRepo repository.FailedJobRepository,
	limiter flow.Acquirer,
	sink flow.Sink,
	policy flow.RetryPolicy,
	definition *flowcfg.Definition,
	jobTimeout, pollPeriod time.Duration,
) Worker {
	if sink == nil {
		sink = flow.NopSink{}
	}
	return &scrapeWorker{
		queueRepo:     queueRepo,
		scrapers:      scrapers,
		runRepo:       runRepo,
		failedJobRepo: failedJobRepo,
		limiter:       limiter,
		sink:          sink,
		policy:        policy,
		definition:    definition,
		jobTimeout:    jobTimeout,
		pollPeriod:    pollPeriod,
	}
}

func (w *scrapeWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Worker stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			if err := w.ProcessJobFromQueue(ctx); err != nil {
				slog.Error("Failed to process job", "error", err)
			}
			if size, err := w.queueRepo.Size(ctx); err == nil && metrics.JobsInQueue != nil {
				metrics.JobsInQueue.Set(float64(size))
			}
		}
	}
}

// ProcessJobFromQueue pops one job and runs the scrape workflow for it:
// fetch through the driver (retryable, rate limited), then clear any stale
// failure record. The run outcome is persisted either way.
func (w *scrapeWorker) ProcessJobFromQueue(ctx context.Context) error {
	job, err := w.queueRepo.Pop(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Queue is empty, which is a normal state.
			return nil
		}
		return fmt.Errorf("failed to pop job from queue: %w", err)
	}

	slog.Info("Processing job from queue", "job_id", job.ID, "url", job.URL, "mode", job.Mode)

	scraper, ok := w.scrapers[job.Mode]
	if !ok {
		scraper = w.scrapers[entity.ModeBrowser]
	}

	runCtx := ctx
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	wf, err := w.buildWorkflow(job, scraper)
	if err != nil {
		return fmt.Errorf("building workflow for job %s: %w", job.ID, err)
	}

	startedAt := time.Now()
	result, err := wf.Run(runCtx)
	if err != nil {
		return fmt.Errorf("workflow for job %s is invalid: %w", job.ID, err)
	}

	status := "success"
	if !result.Success {
		status = "failure"
	}
	if metrics.WorkflowRunsTotal != nil {
		metrics.WorkflowRunsTotal.WithLabelValues(w.workflowName(), status).Inc()
	}

	if err := w.saveRun(ctx, job, result, startedAt); err != nil {
		return fmt.Errorf("failed to save run for %s: %w", job.URL, err)
	}
	if !result.Success {
		return w.handleRunFailure(ctx, job, result)
	}
	return nil
}

func (w *scrapeWorker) workflowName() string {
	if w.definition != nil {
		return w.definition.Name
	}
	return scrapeWorkflowName
}

// fetchAction fetches the job's URL through the given driver and publishes
// status and title into the shared context.
func (w *scrapeWorker) fetchAction(job *entity.ScrapeJob, scraper repository.ScraperRepository) flow.Action {
	return func(ctx context.Context, wctx *flow.Context) (any, error) {
		data, err := scraper.Scrape(ctx, job.URL)
		if err != nil {
			return nil, err
		}
		wctx.Set("status", data.StatusCode)
		wctx.Set("title", data.Title)
		return data, nil
	}
}

// clearFailureAction drops a stale failure record once the URL recovered.
func (w *scrapeWorker) clearFailureAction(job *entity.ScrapeJob) flow.Action {
	return func(ctx context.Context, wctx *flow.Context) (any, error) {
		if err := w.failedJobRepo.Delete(ctx, job.URL); err != nil {
			return nil, err
		}
		return true, nil
	}
}

// WorkflowActions is the action registry available to declarative workflow
// definitions, bound to one job.
func (w *scrapeWorker) WorkflowActions(job *entity.ScrapeJob, scraper repository.ScraperRepository) flowcfg.Registry {
	return flowcfg.Registry{
		"fetch":         w.fetchAction(job, scraper),
		"clear_failure": w.clearFailureAction(job),
	}
}

// buildWorkflow assembles the per-job workflow, either from the configured
// definition or the built-in one. The fetch step carries the retry budget and
// the rate gate; the cleanup step is optional so a storage hiccup never fails
// an otherwise successful scrape.
func (w *scrapeWorker) buildWorkflow(job *entity.ScrapeJob, scraper repository.ScraperRepository) (*flow.Workflow, error) {
	opts := []flow.Option{
		flow.WithRetryPolicy(w.policy),
		flow.WithLimiter(w.limiter),
		flow.WithSink(w.sink),
		flow.WithValues(map[string]any{
			"url":  job.URL,
			"mode": job.Mode,
		}),
	}

	if w.definition != nil {
		return flowcfg.Build(w.definition, w.WorkflowActions(job, scraper), opts...)
	}

	return flow.NewWorkflow(scrapeWorkflowName, opts...).AddStep(flow.Step{
		Name:      "fetch",
		Required:  true,
		Retryable: true,
		Action:    w.fetchAction(job, scraper),
		OnError: func(err error, wctx *flow.Context) {
			wctx.Set("fetch_error", err.Error())
		},
	}).AddStep(flow.Step{
		Name:      "clear_failure",
		Condition: flow.MustExprCondition(`fetch != nil`),
		Action:    w.clearFailureAction(job),
	}), nil
}

func (w *scrapeWorker) saveRun(ctx context.Context, job *entity.ScrapeJob, result *flow.Result, startedAt time.Time) error {
	run := &entity.WorkflowRun{
		ID:         result.RunID,
		Workflow:   w.workflowName(),
		URL:        job.URL,
		Success:    result.Success,
		Steps:      make([]entity.StepRecord, 0, len(result.Steps)),
		FinalData:  summarizeFinalData(result),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	for _, s := range result.Steps {
		rec := entity.StepRecord{
			Name:     s.Name,
			Status:   s.Status.String(),
			Attempts: s.Attempts,
		}
		if s.Err != nil {
			rec.Error = s.Err.Error()
		}
		run.Steps = append(run.Steps, rec)
	}
	return w.runRepo.Save(ctx, run)
}

// summarizeFinalData flattens the fetch result into plain JSON-friendly
// values; raw page bodies stay out of the runs table.
func summarizeFinalData(result *flow.Result) map[string]any {
	out := make(map[string]any)
	if data, ok := result.FinalData["fetch"].(*entity.PageData); ok {
		out["title"] = data.Title
		out["status_code"] = data.StatusCode
		out["response_time_ms"] = data.ResponseTimeMS
	}
	return out
}

func (w *scrapeWorker) handleRunFailure(ctx context.Context, job *entity.ScrapeJob, result *flow.Result) error {
	var stepErr error
	attempts := 0
	for _, s := range result.Steps {
		if s.Status == flow.StatusFailed && s.Err != nil {
			stepErr = s.Err
			attempts = s.Attempts
			break
		}
	}
	if stepErr == nil {
		return nil
	}

	kind := flow.KindOf(stepErr)
	var exhausted *flow.RetriesExhaustedError
	kindLabel := kind.String()
	if errors.As(stepErr, &exhausted) {
		kindLabel = "retries_exhausted:" + flow.KindOf(exhausted.Last).String()
	}

	slog.Error("Job failed terminally, recording failure",
		"job_id", job.ID, "url", job.URL, "kind", kindLabel, "attempts", attempts, "error", stepErr)

	failed := &entity.FailedJob{
		URL:           job.URL,
		ErrorKind:     kindLabel,
		FailureReason: stepErr.Error(),
		Attempts:      attempts,
		LastAttemptAt: time.Now(),
	}
	if err := w.failedJobRepo.SaveOrUpdate(ctx, failed); err != nil {
		return fmt.Errorf("failed to record failure for %s: %w", job.URL, err)
	}
	return nil
}
