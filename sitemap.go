package docqa

import "context"

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds URLs from a site's sitemap that live under the
	// path of baseURL. It first checks robots.txt for sitemap directives,
	// then falls back to /sitemap.xml. Sitemap indexes are resolved
	// recursively. Returns an empty slice when the site has no sitemap.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}
