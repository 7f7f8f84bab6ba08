package entity

import "time"

// Scrape modes select the driver used for a job.
const (
	ModeBrowser = "browser"
	ModeHTTP    = "http"
)

// ScrapeJob is one queued unit of work: fetch a URL through a driver and run
// it through the scrape workflow.
type ScrapeJob struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Mode        string    `json:"mode"`
	SubmittedAt time.Time `json:"submitted_at"`
}
