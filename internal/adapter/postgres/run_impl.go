package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/scrapeflow/internal/entity"
)

// RunRepoImpl persists workflow run outcomes in PostgreSQL.
type RunRepoImpl struct {
	db *pgxpool.Pool
}

// NewRunRepo creates a new instance of RunRepoImpl.
func NewRunRepo(db *pgxpool.Pool) *RunRepoImpl {
	return &RunRepoImpl{db: db}
}

// Save stores one finished run. Step outcomes and final data go into JSONB
// columns.
func (r *RunRepoImpl) Save(ctx context.Context, run *entity.WorkflowRun) error {
	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("encoding step outcomes: %w", err)
	}
	finalData, err := json.Marshal(run.FinalData)
	if err != nil {
		return fmt.Errorf("encoding final data: %w", err)
	}

	query := `
		INSERT INTO workflow_runs (id, workflow, url, success, steps, final_data, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = r.db.Exec(ctx, query,
		run.ID,
		run.Workflow,
		run.URL,
		run.Success,
		steps,
		finalData,
		run.StartedAt,
		run.FinishedAt,
	)
	return err
}

// FindLatestByURL returns the most recent run for a URL, or nil when the URL
// has never completed a run.
func (r *RunRepoImpl) FindLatestByURL(ctx context.Context, url string) (*entity.WorkflowRun, error) {
	query := `
		SELECT id, workflow, url, success, steps, final_data, started_at, finished_at
		FROM workflow_runs
		WHERE url = $1
		ORDER BY finished_at DESC
		LIMIT 1;
	`
	var run entity.WorkflowRun
	var steps, finalData []byte
	err := r.db.QueryRow(ctx, query, url).Scan(
		&run.ID,
		&run.Workflow,
		&run.URL,
		&run.Success,
		&steps,
		&finalData,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(steps, &run.Steps); err != nil {
		return nil, fmt.Errorf("decoding step outcomes: %w", err)
	}
	if err := json.Unmarshal(finalData, &run.FinalData); err != nil {
		return nil, fmt.Errorf("decoding final data: %w", err)
	}
	return &run, nil
}
