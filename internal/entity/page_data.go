package entity

import "time"

// PageData is what a scraper driver hands back for one fetched page. The core
// never inspects it; it flows through workflow results into storage.
type PageData struct {
	URL            string
	Title          string
	Content        string
	StatusCode     int
	ResponseTimeMS int
	FetchedAt      time.Time
}
