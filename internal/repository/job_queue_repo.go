package repository

import (
	"context"

	"github.com/user/scrapeflow/internal/entity"
)

// JobQueueRepository is a FIFO queue of scrape jobs waiting for a worker.
type JobQueueRepository interface {
	// Push adds a job to the end of the queue.
	Push(ctx context.Context, job *entity.ScrapeJob) error
	// Pop removes and returns the job at the front of the queue.
	Pop(ctx context.Context) (*entity.ScrapeJob, error)
	// Size returns the current number of queued jobs.
	Size(ctx context.Context) (int64, error)
}
