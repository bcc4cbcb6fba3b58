package docqa

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch returns the HTML body of the page at url.
	// Permanent failures (non-2xx status, non-text content) are reported
	// as EFETCH; transient network failures are returned as-is so the
	// caller may retry them.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}
