package entity

import "time"

// JobStatus is the externally visible state of a submitted URL.
type JobStatus struct {
	URL           string
	CurrentStatus string // "pending", "completed", "failed", "not_found"
	LastRunAt     *time.Time
	ErrorKind     string
	FailureReason string
}
