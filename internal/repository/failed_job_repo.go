package repository

import (
	"context"

	"github.com/user/scrapeflow/internal/entity"
)

// FailedJobRepository records jobs that failed terminally (fatal or retries
// exhausted), keyed by URL.
type FailedJobRepository interface {
	// SaveOrUpdate creates or refreshes the failure record for a URL.
	SaveOrUpdate(ctx context.Context, job *entity.FailedJob) error
	// FindByURL returns the failure record, or nil when none exists.
	FindByURL(ctx context.Context, url string) (*entity.FailedJob, error)
	// Delete removes the record, typically after a later successful run.
	Delete(ctx context.Context, url string) error
}
