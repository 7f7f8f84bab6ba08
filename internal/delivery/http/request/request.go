package request

type SubmitScrapeRequest struct {
	URL   string `json:"url"`
	Mode  string `json:"mode"`  // "browser" (default) or "http"
	Force bool   `json:"force"` // bypass the dedup window
}
