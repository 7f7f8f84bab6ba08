package flow

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Classify maps an arbitrary failure onto the retry taxonomy. Errors that are
// already classified (anywhere in their chain) pass through untouched so that
// drivers can attach precise signals, e.g. a Retry-After hint. Everything the
// rule table does not recognize is fatal: unknown failures must not be
// retried blindly.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeout(err)
	}
	if errors.As(err, &netErr) {
		return NewTransient(err)
	}

	s := strings.ToLower(err.Error())
	switch {
	case containsAny(s, "429", "too many requests", "rate limit", "blocked"):
		return NewRateLimited(err, 0)
	case containsAny(s, "timeout", "timed out", "deadline exceeded"):
		return NewTimeout(err)
	case containsAny(s,
		"connection reset", "connection refused", "broken pipe",
		"unexpected eof", "no such host",
		"500", "502", "503", "504",
		"internal server error", "bad gateway", "service unavailable", "gateway timeout"):
		return NewTransient(err)
	default:
		return NewFatal(err)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
