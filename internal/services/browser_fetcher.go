package services

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// browserFetcher loads pages in headless Chrome so that postings rendered
// by JavaScript are fetched with their final DOM.
type browserFetcher struct {
	chromePath  string
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	logger      zerolog.Logger
}

func NewBrowserFetcher(chromePath string, timeout time.Duration, maxAttempts int, retryDelay time.Duration, logger zerolog.Logger) Fetcher {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &browserFetcher{
		chromePath:  chromePath,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
	}
}

func (f *browserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := checkPublicHost(ctx, url); err != nil {
		return nil, err
	}
	return withRetry(ctx, f.maxAttempts, f.retryDelay, f.logger, func() ([]byte, error) {
		return f.fetchOnce(ctx, url)
	})
}

func (f *browserFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if f.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(f.chromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, f.timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}
	return []byte(html), nil
}
