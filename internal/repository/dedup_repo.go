package repository

import (
	"context"
	"time"
)

// DedupRepository remembers recently submitted URLs so the same target is not
// queued twice within the dedup window.
type DedupRepository interface {
	// MarkSubmitted remembers a URL for the given window.
	MarkSubmitted(ctx context.Context, url string, window time.Duration) error
	// IsSubmitted reports whether the URL was submitted within the window.
	IsSubmitted(ctx context.Context, url string) (bool, error)
	// Clear forgets a URL, used for forced re-scrapes.
	Clear(ctx context.Context, url string) error
}
