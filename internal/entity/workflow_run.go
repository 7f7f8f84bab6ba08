package entity

import "time"

// StepRecord mirrors one per-step outcome inside the workflow_runs table's
// JSONB column.
type StepRecord struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

// WorkflowRun mirrors the `workflow_runs` PostgreSQL table schema.
type WorkflowRun struct {
	ID         string
	Workflow   string
	URL        string
	Success    bool
	Steps      []StepRecord   // stored as JSONB
	FinalData  map[string]any // stored as JSONB
	StartedAt  time.Time
	FinishedAt time.Time
}
