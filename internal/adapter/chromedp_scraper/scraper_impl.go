package chromedp_scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/user/scrapeflow/internal/antidetect"
	"github.com/user/scrapeflow/internal/entity"
	"github.com/user/scrapeflow/internal/flow"
	"github.com/user/scrapeflow/internal/repository"
)

// ChromedpScraper drives a headless browser. Failures carry classified
// signals derived from the document response status so the retry layer can
// tell a blocked target from a flaky one.
type ChromedpScraper struct {
	allocatorPool *sync.Pool
	timeout       time.Duration
}

// NewChromedpScraper creates a browser-backed scraper. The allocator pool is
// pre-warmed to maxConcurrency contexts; user agent and proxy come from the
// anti-detection manager at allocator construction.
func NewChromedpScraper(ad *antidetect.Manager, maxConcurrency int, pageLoadTimeout time.Duration) (repository.ScraperRepository, error) {
	pool := &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.Flag("disable-blink-features", "AutomationControlled"),
				chromedp.UserAgent(ad.UserAgent()),
			)
			if proxy := ad.Proxy(); proxy != "" {
				opts = append(opts, chromedp.ProxyServer(proxy))
			}
			allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
			return allocCtx
		},
	}

	// Pre-warm the pool
	for i := 0; i < maxConcurrency; i++ {
		allocCtx := pool.Get().(context.Context)
		pool.Put(allocCtx)
	}

	return &ChromedpScraper{
		allocatorPool: pool,
		timeout:       pageLoadTimeout,
	}, nil
}

// Scrape navigates to a URL and extracts the page title and document status.
func (s *ChromedpScraper) Scrape(ctx context.Context, url string) (*entity.PageData, error) {
	allocCtx := s.allocatorPool.Get().(context.Context)
	defer s.allocatorPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	taskCtx, cancel = context.WithTimeout(taskCtx, s.timeout)
	defer cancel()

	// The main document response carries the status code we classify on. The
	// listener runs on the browser event goroutine, so the handoff is atomic.
	var statusCode atomic.Int64
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if resp.Type == network.ResourceTypeDocument {
				statusCode.CompareAndSwap(0, resp.Response.Status)
			}
		}
	})

	var title string
	startTime := time.Now()
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Title(&title),
	)
	responseTime := time.Since(startTime).Milliseconds()

	if err != nil {
		slog.Error("Failed to scrape URL", "url", url, "error", err)
		if ctx.Err() != nil || taskCtx.Err() == context.DeadlineExceeded {
			return nil, flow.NewTimeout(err)
		}
		return nil, err
	}

	status := int(statusCode.Load())
	if serr := statusError(url, status); serr != nil {
		slog.Warn("Page responded with error status", "url", url, "status", status)
		return nil, serr
	}

	slog.Info("Successfully scraped URL", "url", url, "title", title, "status", status)

	return &entity.PageData{
		URL:            url,
		Title:          title,
		StatusCode:     status,
		ResponseTimeMS: int(responseTime),
		FetchedAt:      time.Now(),
	}, nil
}

// statusError maps an HTTP status onto the retry taxonomy. The browser has no
// access to the Retry-After header, so rate-limit errors carry no hint here.
func statusError(url string, status int) error {
	switch {
	case status == 0 || status < 400:
		return nil
	case status == 429 || status == 403:
		return flow.NewRateLimited(fmt.Errorf("scrape %s: blocked with status %d", url, status), 0)
	case status >= 500:
		return flow.NewTransient(fmt.Errorf("scrape %s: upstream status %d", url, status))
	default:
		return flow.NewFatal(fmt.Errorf("scrape %s: status %d", url, status))
	}
}
