package entity

import "time"

// FailedJob mirrors the `failed_jobs` PostgreSQL table schema. ErrorKind
// keeps the classified taxonomy ("rate_limited", "timeout", "fatal", ...) so
// callers can tell a blocked target from an exhausted retry budget from an
// unrecoverable failure.
type FailedJob struct {
	ID            int64
	URL           string
	ErrorKind     string
	FailureReason string
	Attempts      int
	LastAttemptAt time.Time
}
