// Package web provides a PageFetcher that downloads pages over HTTP and
// hands the body to a Normaliser for text extraction.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/gapscope/internal/core/domain"
	"github.com/custodia-labs/gapscope/internal/core/ports/driven"
	"github.com/custodia-labs/gapscope/internal/logger"
	"github.com/custodia-labs/gapscope/internal/normalisers/visible"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultUserAgent    = "gapscope/dev (+https://github.com/custodia-labs/gapscope)"
	DefaultMaxBodyBytes = 10 << 20
)

// Config holds configuration for the fetcher.
type Config struct {
	// Timeout bounds each fetch including reading the body (default: 10s).
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodyBytes caps how much of a page is read (default: 10 MiB).
	MaxBodyBytes int64

	// Normaliser extracts text from the body (default: visible text).
	Normaliser driven.Normaliser

	// HTTPClient overrides the pooled client. Mainly for tests.
	HTTPClient *http.Client
}

// Fetcher retrieves page text over HTTP. It is safe for concurrent use and
// shares one pooled client across all fetches of a run.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
	normaliser   driven.Normaliser
}

// New creates a new fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Normaliser == nil {
		cfg.Normaliser = visible.New()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}

	return &Fetcher{
		client:       client,
		timeout:      cfg.Timeout,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		normaliser:   cfg.Normaliser,
	}
}

// Fetch downloads url and returns its extracted text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", domain.ErrPageUnavailable, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrPageUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s: status %d", domain.ErrPageUnavailable, url, resp.StatusCode)
	}

	text, err := f.normaliser.Normalise(url, io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrPageUnavailable, url, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrEmptyContent, url)
	}

	logger.Debug("fetched %s (%d chars, %s, %s)", url, len(text), f.normaliser.Mode(), time.Since(start).Round(time.Millisecond))
	return text, nil
}

// Close releases idle pooled connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
