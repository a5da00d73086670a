package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/oversea-labs/oversea"
	"github.com/sirupsen/logrus"
)

// Fetcher retrieves the rendered HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ChromedpFetcher drives a headless Chrome instance. Product pages on 1688
// assemble most of their content client-side, so a plain HTTP GET returns a
// skeleton; the browser waits for the detail container before reading HTML.
type ChromedpFetcher struct {
	WaitSelector string        // CSS selector to wait for before reading HTML
	Delay        time.Duration // Extra settle time after the wait
	Timeout      time.Duration // Per-fetch timeout (default: 60s)
	Headless     bool
	UserDataDir  string // Browser profile dir, for logged-in sessions
	Logger       logrus.FieldLogger
}

// NewChromedpFetcher creates a fetcher with sensible defaults.
func NewChromedpFetcher() *ChromedpFetcher {
	return &ChromedpFetcher{
		Timeout:  60 * time.Second,
		Headless: true,
	}
}

// Fetch navigates to the URL and returns the page's outer HTML.
func (f *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if f.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(f.UserDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	tasks := chromedp.Tasks{chromedp.Navigate(url)}
	if f.WaitSelector != "" {
		tasks = append(tasks, chromedp.WaitVisible(f.WaitSelector, chromedp.ByQuery))
	}
	if f.Delay > 0 {
		tasks = append(tasks, chromedp.Sleep(f.Delay))
	}

	var html string
	tasks = append(tasks, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(browserCtx, tasks...); err != nil {
		return "", &oversea.ExtractionError{Message: "browser fetch failed", Cause: err, URL: url}
	}

	if f.Logger != nil {
		f.Logger.WithFields(logrus.Fields{"url": url, "bytes": len(html)}).Debug("page fetched")
	}
	return html, nil
}

// HTTPFetcher retrieves pages over plain HTTP. Sufficient for statically
// rendered pages and for tests.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher creates an HTTP fetcher with a default client.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		UserAgent: oversea.UserAgent(),
	}
}

// Fetch performs a GET request and returns the response body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &oversea.ExtractionError{Message: "build request", Cause: err, URL: url}
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.5")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", &oversea.ExtractionError{Message: "request failed", Cause: err, URL: url}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &oversea.ExtractionError{
			Message: fmt.Sprintf("unexpected status code %d", resp.StatusCode),
			URL:     url,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &oversea.ExtractionError{Message: "read response body", Cause: err, URL: url}
	}
	return string(body), nil
}

var (
	_ Fetcher = (*ChromedpFetcher)(nil)
	_ Fetcher = (*HTTPFetcher)(nil)
)
