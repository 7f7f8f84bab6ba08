package response

import "time"

type SubmitScrapeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// JobStatusResponse is a DTO for job status, mirroring entity.JobStatus
type JobStatusResponse struct {
	URL           string     `json:"url"`
	CurrentStatus string     `json:"current_status"` // "pending", "completed", "failed"
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	ErrorKind     string     `json:"error_kind,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
}
