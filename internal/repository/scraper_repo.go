package repository

import (
	"context"

	"github.com/user/scrapeflow/internal/entity"
)

// ScraperRepository is the driver boundary: a black box that fetches a page
// and may fail transiently or permanently. Implementations attach classified
// signals (flow.Error) to failures where they know better than the generic
// rule table, e.g. an HTTP 429 with a Retry-After header.
type ScraperRepository interface {
	// Scrape fetches a URL and returns the extracted page data.
	Scrape(ctx context.Context, url string) (*entity.PageData, error)
}
