package repository

import (
	"context"

	"github.com/user/scrapeflow/internal/entity"
)

// RunRepository persists workflow run outcomes.
type RunRepository interface {
	// Save stores one finished run.
	Save(ctx context.Context, run *entity.WorkflowRun) error
	// FindLatestByURL returns the most recent run for a URL, or nil when the
	// URL has never completed a run.
	FindLatestByURL(ctx context.Context, url string) (*entity.WorkflowRun, error)
}
