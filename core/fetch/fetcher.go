// Package fetch implements the Fetcher interface.
// HTTPFetcher downloads the HTML rendering of a paper from arXiv, FileFetcher
// reads a saved page from disk, and Auto picks between them per source.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gaurav-prasanna/arxiv2md/core"
	"github.com/gaurav-prasanna/arxiv2md/internal/logger"
)

const (
	DefaultBaseURL   = "https://arxiv.org/html/"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; arxiv2md/1.0; +https://github.com/gaurav-prasanna/arxiv2md)"

	maxBodySize = 64 << 20
)

// noHTMLMarker is shown by arXiv for papers that have no HTML rendering.
const noHTMLMarker = "No HTML available"

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithBaseURL sets the prefix identifiers are appended to.
func WithBaseURL(base string) Option {
	return func(f *HTTPFetcher) { f.baseURL = base }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) { f.client.Timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// WithClient replaces the HTTP client. A timeout set by WithTimeout must come
// after it.
func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

// HTTPFetcher fetches papers over HTTP.
type HTTPFetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// New creates an HTTPFetcher with a sensible timeout.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the HTML rendering of the paper identified by ref.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (*core.FetchResult, error) {
	id, err := NormalizeID(ref)
	if err != nil {
		return nil, err
	}
	url := HTMLURL(f.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", core.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", core.ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", core.ErrFetchFailed, err)
	}

	// arXiv answers a missing rendering with an error page; the marker is
	// checked before the status so the caller gets the specific error.
	if strings.Contains(string(body), noHTMLMarker) {
		return nil, fmt.Errorf("%w: %s", core.ErrNoHTMLAvailable, id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", core.ErrFetchFailed, resp.StatusCode, url)
	}

	logger.Debug("fetched paper",
		"id", id,
		"url", url,
		"size", humanize.Bytes(uint64(len(body))),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return &core.FetchResult{
		ID:         id,
		URL:        url,
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}

// IsNoHTML reports whether err means the paper has no HTML rendering.
func IsNoHTML(err error) bool {
	return errors.Is(err, core.ErrNoHTMLAvailable)
}
