package feedio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"transitstats.opentransit.org/internal/feed"
	"transitstats.opentransit.org/internal/logging"
)

// maxFeedSize caps a remote feed download. Archives past this size are
// almost certainly not schedule data.
const maxFeedSize = 200 * 1024 * 1024

// FetchConfig configures a Fetcher. AuthHeaderKey and AuthHeaderValue are
// sent on every request when both are set; MinInterval spaces out requests
// to the same fetcher so periodic refreshes stay polite to the feed host.
type FetchConfig struct {
	AuthHeaderKey   string
	AuthHeaderValue string
	MinInterval     time.Duration
}

// Fetcher downloads datasets over HTTP.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	config  FetchConfig
	opts    Options
}

// NewFetcher creates a Fetcher with timeouts sized for large static
// downloads.
func NewFetcher(config FetchConfig, opts Options) *Fetcher {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(config.MinInterval), 1)
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		limiter: limiter,
		config:  config,
		opts:    opts,
	}
}

// Fetch downloads the dataset at url and builds a snapshot. It blocks on
// the fetcher's rate limiter first, so a refresh loop can call it in a
// tight loop without hammering the host.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*feed.Snapshot, error) {
	logger := f.opts.logger().With(slog.String("component", "feed_fetcher"))

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("error waiting for fetch slot: %w", err)
	}

	start := time.Now()
	b, err := f.download(ctx, url)
	if err != nil {
		f.opts.Metrics.ObserveFeedLoad("http", err, time.Since(start))
		return nil, err
	}
	f.opts.Metrics.AddFetchBytes(int64(len(b)))

	snap, err := parseSnapshot(b, f.opts)
	f.opts.Metrics.ObserveFeedLoad("http", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	logging.LogOperation(logger, "feed_fetched",
		slog.String("url", url),
		slog.Int("bytes", len(b)),
		slog.Duration("duration", time.Since(start)))
	return snap, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating feed request: %w", err)
	}
	if f.config.AuthHeaderKey != "" && f.config.AuthHeaderValue != "" {
		req.Header.Set(f.config.AuthHeaderKey, f.config.AuthHeaderValue)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading feed: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		f.opts.logger().With(slog.String("component", "feed_fetcher")),
		"http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download feed: received HTTP status %s", resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading feed response: %w", err)
	}
	if len(b) > maxFeedSize {
		return nil, fmt.Errorf("feed response exceeds size limit of %d bytes", maxFeedSize)
	}
	return b, nil
}
