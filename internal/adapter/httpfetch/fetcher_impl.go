package httpfetch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/user/scrapeflow/internal/antidetect"
	"github.com/user/scrapeflow/internal/entity"
	"github.com/user/scrapeflow/internal/flow"
	"github.com/user/scrapeflow/internal/repository"
)

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Fetcher is the plain-HTTP driver for targets that do not need a browser.
// Unlike the browser driver it sees response headers, so a 429 surfaces with
// the server's Retry-After hint attached.
type Fetcher struct {
	client *resty.Client
	ad     *antidetect.Manager
}

// NewFetcher creates an HTTP scraper. Resty's built-in retry stays disabled;
// the retry executor owns re-attempts.
func NewFetcher(ad *antidetect.Manager, timeout time.Duration) repository.ScraperRepository {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)
	if proxy := ad.Proxy(); proxy != "" {
		client.SetProxy(proxy)
	}
	return &Fetcher{client: client, ad: ad}
}

// Scrape fetches a URL over HTTP and returns the raw page.
func (f *Fetcher) Scrape(ctx context.Context, url string) (*entity.PageData, error) {
	start := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", f.ad.UserAgent()).
		Get(url)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		slog.Error("Failed to fetch URL", "url", url, "error", err)
		return nil, err
	}

	status := resp.StatusCode()
	if serr := f.statusError(url, resp); serr != nil {
		slog.Warn("Fetch responded with error status", "url", url, "status", status)
		return nil, serr
	}

	body := string(resp.Body())
	slog.Info("Successfully fetched URL", "url", url, "status", status, "bytes", len(body))

	return &entity.PageData{
		URL:            url,
		Title:          extractTitle(body),
		Content:        body,
		StatusCode:     status,
		ResponseTimeMS: int(responseTime),
		FetchedAt:      time.Now(),
	}, nil
}

func (f *Fetcher) statusError(url string, resp *resty.Response) error {
	status := resp.StatusCode()
	switch {
	case status < 400:
		return nil
	case status == 429 || status == 403:
		return flow.NewRateLimited(
			fmt.Errorf("fetch %s: blocked with status %d", url, status),
			retryAfter(resp.Header().Get("Retry-After")))
	case status >= 500:
		return flow.NewTransient(fmt.Errorf("fetch %s: upstream status %d", url, status))
	default:
		return flow.NewFatal(fmt.Errorf("fetch %s: status %d", url, status))
	}
}

// retryAfter parses the delay-seconds form of the Retry-After header. The
// HTTP-date form is rare enough on rate limiters to ignore.
func retryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func extractTitle(body string) string {
	m := titlePattern.FindStringSubmatch(body)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
