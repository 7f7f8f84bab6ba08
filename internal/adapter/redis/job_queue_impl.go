package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/user/scrapeflow/internal/entity"
)

const jobQueueKey = "scrapeflow:jobs"

// JobQueueRepoImpl implements the job queue on a Redis list. Jobs are stored
// as JSON documents.
type JobQueueRepoImpl struct {
	client *redis.Client
}

// NewJobQueueRepo creates a new instance of JobQueueRepoImpl.
func NewJobQueueRepo(client *redis.Client) *JobQueueRepoImpl {
	return &JobQueueRepoImpl{client: client}
}

// Push adds a job to the left side of the list.
func (r *JobQueueRepoImpl) Push(ctx context.Context, job *entity.ScrapeJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", job.ID, err)
	}
	return r.client.LPush(ctx, jobQueueKey, payload).Err()
}

// Pop removes and returns the job at the front of the queue. Returns
// redis.Nil when the queue is empty.
func (r *JobQueueRepoImpl) Pop(ctx context.Context) (*entity.ScrapeJob, error) {
	payload, err := r.client.RPop(ctx, jobQueueKey).Result()
	if err != nil {
		return nil, err
	}
	var job entity.ScrapeJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return nil, fmt.Errorf("decoding queued job: %w", err)
	}
	return &job, nil
}

// Size returns the current number of queued jobs.
func (r *JobQueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, jobQueueKey).Result()
}
