package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Fetcher downloads the raw content behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// maxFetchBytes caps the size of a downloaded page.
const maxFetchBytes = 8 << 20

var errPermanent = errors.New("permanent fetch failure")

type httpFetcher struct {
	client      *http.Client
	maxAttempts int
	retryDelay  time.Duration
	logger      zerolog.Logger
}

// NewHTTPFetcher returns a fetcher that only connects to public addresses.
func NewHTTPFetcher(timeout time.Duration, maxAttempts int, retryDelay time.Duration, logger zerolog.Logger) Fetcher {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   publicOnlyControl,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return newHTTPFetcher(&http.Client{Timeout: timeout, Transport: transport}, maxAttempts, retryDelay, logger)
}

func newHTTPFetcher(client *http.Client, maxAttempts int, retryDelay time.Duration, logger zerolog.Logger) *httpFetcher {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &httpFetcher{
		client:      client,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return withRetry(ctx, f.maxAttempts, f.retryDelay, f.logger, func() ([]byte, error) {
		return f.fetchOnce(ctx, url)
	})
}

func (f *httpFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errPermanent, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; resume-critic/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: unexpected status %d", errPermanent, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

// withRetry calls fn until it succeeds, fails permanently, or runs out of
// attempts. The delay grows linearly with the attempt number.
func withRetry(ctx context.Context, attempts int, delay time.Duration, logger zerolog.Logger, fn func() ([]byte, error)) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := fn()
		if err == nil {
			return body, nil
		}
		lastErr = err

		if errors.Is(err, errPermanent) {
			return nil, err
		}

		if attempt < attempts {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("⚠️ Fetch failed, retrying")
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay * time.Duration(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
