package flow

import (
	"errors"
	"fmt"
	"time"
)

// Kind buckets a failure into the retry taxonomy.
type Kind int

const (
	// KindTransient covers connection resets, 5xx-style upstream hiccups and
	// other failures that are expected to clear on their own.
	KindTransient Kind = iota
	// KindRateLimited means the upstream told us to slow down (429, explicit
	// block). Retryable, but a server-supplied Retry-After hint takes
	// precedence over the computed backoff when it is larger.
	KindRateLimited
	// KindTimeout covers exceeded deadlines, both our own and the driver's.
	KindTimeout
	// KindFatal is never retried.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Retryable reports whether the retry executor may re-attempt after this kind.
func (k Kind) Retryable() bool {
	return k != KindFatal
}

// Error is a failure annotated with its classification. RetryAfter is only
// meaningful for KindRateLimited and is zero when the server gave no hint.
type Error struct {
	Kind       Kind
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error { return e.Err }

// NewTransient wraps err as a transient failure.
func NewTransient(err error) *Error {
	return &Error{Kind: KindTransient, Err: err}
}

// NewRateLimited wraps err as a rate-limit failure carrying an optional
// server-supplied wait hint.
func NewRateLimited(err error, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, RetryAfter: retryAfter, Err: err}
}

// NewTimeout wraps err as a timeout failure.
func NewTimeout(err error) *Error {
	return &Error{Kind: KindTimeout, Err: err}
}

// NewFatal wraps err as an unrecoverable failure.
func NewFatal(err error) *Error {
	return &Error{Kind: KindFatal, Err: err}
}

// RetriesExhaustedError is returned by the retry executor once a retryable
// error has survived every allowed attempt. Attempts is the total number of
// invocations, including the first.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %s", e.Attempts, e.Last.Error())
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }

// KindOf extracts the classification from an error chain. Errors that never
// went through Classify report KindFatal.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindFatal
}
