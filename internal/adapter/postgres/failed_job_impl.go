package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/scrapeflow/internal/entity"
)

// FailedJobRepoImpl records terminally failed jobs in PostgreSQL.
type FailedJobRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailedJobRepo creates a new instance of FailedJobRepoImpl.
func NewFailedJobRepo(db *pgxpool.Pool) *FailedJobRepoImpl {
	return &FailedJobRepoImpl{db: db}
}

// SaveOrUpdate creates or refreshes the failure record for a URL.
func (r *FailedJobRepoImpl) SaveOrUpdate(ctx context.Context, job *entity.FailedJob) error {
	query := `
		INSERT INTO failed_jobs (url, error_kind, failure_reason, attempts, last_attempt_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url) DO UPDATE SET
			error_kind = EXCLUDED.error_kind,
			failure_reason = EXCLUDED.failure_reason,
			attempts = EXCLUDED.attempts,
			last_attempt_at = EXCLUDED.last_attempt_at;
	`
	_, err := r.db.Exec(ctx, query,
		job.URL,
		job.ErrorKind,
		job.FailureReason,
		job.Attempts,
		job.LastAttemptAt,
	)
	return err
}

// FindByURL returns the failure record, or nil when none exists.
func (r *FailedJobRepoImpl) FindByURL(ctx context.Context, url string) (*entity.FailedJob, error) {
	query := `
		SELECT id, url, error_kind, failure_reason, attempts, last_attempt_at
		FROM failed_jobs
		WHERE url = $1;
	`
	var job entity.FailedJob
	err := r.db.QueryRow(ctx, query, url).Scan(
		&job.ID,
		&job.URL,
		&job.ErrorKind,
		&job.FailureReason,
		&job.Attempts,
		&job.LastAttemptAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// Delete removes the record, typically after a later successful run.
func (r *FailedJobRepoImpl) Delete(ctx context.Context, url string) error {
	query := `DELETE FROM failed_jobs WHERE url = $1;`
	_, err := r.db.Exec(ctx, query, url)
	return err
}
