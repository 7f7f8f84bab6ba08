package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/user/scrapeflow/internal/entity"
	"github.com/user/scrapeflow/internal/repository"
)

var (
	ErrURLRecentlySubmitted = errors.New("URL has been submitted recently and force is false")
)

const (
	// Submissions for the same URL are collapsed within this window.
	dedupWindow = 48 * time.Hour
)

// JobManager defines the interface for submitting jobs and checking their
// state.
type JobManager interface {
	Submit(ctx context.Context, url, mode string, force bool) (string, error)
	GetStatus(ctx context.Context, url string) (*entity.JobStatus, error)
}

type jobManagerUseCase struct {
	dedupRepo     repository.DedupRepository
	queueRepo     repository.JobQueueRepository
	runRepo       repository.RunRepository
	failedJobRepo repository.FailedJobRepository
}

// NewJobManager creates a new JobManager use case.
func NewJobManager(
	dedupRepo repository.DedupRepository,
	queueRepo repository.JobQueueRepository,
	runRepo repository.RunRepository,
	failedJobRepo repository.FailedJobRepository,
) JobManager {
	return &jobManagerUseCase{
		dedupRepo:     dedupRepo,
		queueRepo:     queueRepo,
		runRepo:       runRepo,
		failedJobRepo: failedJobRepo,
	}
}

func (uc *jobManagerUseCase) Submit(ctx context.Context, url, mode string, force bool) (string, error) {
	if mode == "" {
		mode = entity.ModeBrowser
	}

	if force {
		if err := uc.dedupRepo.Clear(ctx, url); err != nil {
			slog.Warn("Failed to clear dedup key for forced submit", "url", url, "error", err)
			// Continue anyway, this is not a critical failure.
		}
	} else {
		submitted, err := uc.dedupRepo.IsSubmitted(ctx, url)
		if err != nil {
			return "", err
		}
		if submitted {
			return "", ErrURLRecentlySubmitted
		}
	}

	job := &entity.ScrapeJob{
		ID:          uuid.New().String(),
		URL:         url,
		Mode:        mode,
		SubmittedAt: time.Now(),
	}
	if err := uc.queueRepo.Push(ctx, job); err != nil {
		return "", err
	}

	if err := uc.dedupRepo.MarkSubmitted(ctx, url, dedupWindow); err != nil {
		// Non-critical: the job is queued but might be queued again before a
		// worker picks it up.
		slog.Error("Failed to mark URL as submitted after queueing", "url", url, "error", err)
	}

	return job.ID, nil
}

func (uc *jobManagerUseCase) GetStatus(ctx context.Context, url string) (*entity.JobStatus, error) {
	run, err := uc.runRepo.FindLatestByURL(ctx, url)
	if err != nil {
		slog.Error("Error finding latest run by URL", "url", url, "error", err)
		return nil, err
	}
	if run != nil && run.Success {
		return &entity.JobStatus{
			URL:           url,
			CurrentStatus: "completed",
			LastRunAt:     &run.FinishedAt,
		}, nil
	}

	failed, err := uc.failedJobRepo.FindByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if failed != nil {
		return &entity.JobStatus{
			URL:           url,
			CurrentStatus: "failed",
			LastRunAt:     &failed.LastAttemptAt,
			ErrorKind:     failed.ErrorKind,
			FailureReason: failed.FailureReason,
		}, nil
	}

	submitted, err := uc.dedupRepo.IsSubmitted(ctx, url)
	if err != nil {
		return nil, err
	}
	if submitted {
		return &entity.JobStatus{
			URL:           url,
			CurrentStatus: "pending",
		}, nil
	}

	return &entity.JobStatus{
		URL:           url,
		CurrentStatus: "not_found",
	}, nil
}
