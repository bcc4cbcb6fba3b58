// Package http fetches pages and sitemaps over plain HTTP. It does not
// execute JavaScript; the rod package covers client-rendered sites.
package http

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/docqa"
)

// DefaultFetchTimeout bounds a single request, including reading the body.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize caps the bytes read from one response.
const DefaultMaxBodySize = 10 << 20

// maxRedirects matches the limit of http.Client's default policy.
const maxRedirects = 10

// DefaultUserAgent identifies the crawler to servers.
const DefaultUserAgent = "docqa/1.0 (+https://github.com/fwojciec/docqa)"

// Ensure Fetcher implements docqa.Fetcher at compile time.
var _ docqa.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP GET requests.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the response body size. Larger bodies are truncated.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout, CheckRedirect: checkRedirect}
	return f
}

// checkRedirect follows redirects only within the registrable domain of the
// original request.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return docqa.Errorf(docqa.EFETCH, "stopped after %d redirects", maxRedirects)
	}
	return docqa.CheckSameSite(via[0].URL.String(), req.URL.String())
}

// Fetch retrieves the HTML body of url.
//
// Non-2xx responses, non-text content types and redirects off the
// requested site are reported as EFETCH so the crawler does not retry them.
// Network errors are returned unwrapped.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", docqa.Errorf(docqa.EFETCH, "invalid request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		var derr *docqa.Error
		if errors.As(err, &derr) {
			return "", derr
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 429 and 5xx are worth another attempt
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", &statusError{code: resp.StatusCode, url: url}
		}
		return "", docqa.Errorf(docqa.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	if !isTextContent(resp.Header.Get("Content-Type")) {
		return "", docqa.Errorf(docqa.EFETCH, "unsupported content type %q for %s",
			resp.Header.Get("Content-Type"), url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Close is a no-op; http.Client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// statusError is a retryable HTTP status.
type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return "HTTP " + http.StatusText(e.code) + " for " + e.url
}

// isTextContent reports whether a Content-Type header names HTML or text.
// A missing header is accepted; many static hosts omit it.
func isTextContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") || mediaType == "application/xhtml+xml"
}
