package http

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docqa"
)

// DefaultMaxSitemapURLs caps the URLs collected from one site.
const DefaultMaxSitemapURLs = 5000

// Ensure SitemapService implements docqa.SitemapService.
var _ docqa.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client  *http.Client
	maxURLs int
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client, maxURLs: DefaultMaxSitemapURLs}
}

// SetMaxURLs overrides DefaultMaxSitemapURLs. Values below 1 are ignored.
func (s *SitemapService) SetMaxURLs(n int) {
	if n > 0 {
		s.maxURLs = n
	}
}

// DiscoverURLs returns sitemap URLs on the host of baseURL whose path lies
// under the path of baseURL. A child sitemap that cannot be fetched or
// parsed is skipped; only context errors abort discovery.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "invalid base URL %q", baseURL)
	}

	root := &url.URL{Scheme: base.Scheme, Host: base.Host}
	sitemaps, err := s.findSitemapURLs(ctx, root)
	if err != nil {
		return nil, err
	}

	d := &discovery{
		svc:      s,
		host:     strings.ToLower(base.Hostname()),
		prefix:   pathPrefix(base.Path),
		visited:  make(map[string]bool),
		seenURLs: make(map[string]bool),
		urls:     []string{},
	}
	for _, sm := range sitemaps {
		if err := d.process(ctx, sm); err != nil {
			return nil, err
		}
		if d.full() {
			break
		}
	}
	return d.urls, nil
}

// discovery carries the state of one DiscoverURLs call.
type discovery struct {
	svc      *SitemapService
	host     string
	prefix   string
	visited  map[string]bool
	seenURLs map[string]bool
	urls     []string
}

func (d *discovery) full() bool {
	return len(d.urls) >= d.svc.maxURLs
}

// process fetches one sitemap and follows sitemap indexes recursively.
func (d *discovery) process(ctx context.Context, sitemapURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.visited[sitemapURL] || d.full() {
		return nil
	}
	d.visited[sitemapURL] = true

	body, err := d.svc.fetch(ctx, sitemapURL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}

	if root.Tag == "sitemapindex" {
		for _, loc := range locs(root, "sitemap") {
			if err := d.process(ctx, loc); err != nil {
				return err
			}
		}
		return nil
	}

	for _, loc := range locs(root, "url") {
		if d.full() {
			return nil
		}
		if d.seenURLs[loc] || !d.inScope(loc) {
			continue
		}
		d.seenURLs[loc] = true
		d.urls = append(d.urls, loc)
	}
	return nil
}

// inScope reports whether rawURL is on the discovery host and under prefix.
// Path prefixes match on segment boundaries: /docs matches /docs/intro but
// not /documentation.
func (d *discovery) inScope(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || strings.ToLower(u.Hostname()) != d.host {
		return false
	}
	if d.prefix == "" {
		return true
	}
	return u.Path+"/" == d.prefix || strings.HasPrefix(u.Path, d.prefix)
}

// pathPrefix normalizes a base path to a "/"-terminated prefix, or "" for
// the site root.
func pathPrefix(p string) string {
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasSuffix(p, "/") {
		// A file-like last segment such as index.html scopes to its directory.
		last := p[strings.LastIndex(p, "/")+1:]
		if strings.Contains(last, ".") {
			return p[:strings.LastIndex(p, "/")+1]
		}
		p += "/"
	}
	return p
}

// locs returns the trimmed, non-empty <loc> values of children named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if v := strings.TrimSpace(loc.Text()); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// findSitemapURLs reads Sitemap: directives from robots.txt, falling back
// to /sitemap.xml when there are none.
func (s *SitemapService) findSitemapURLs(ctx context.Context, root *url.URL) ([]string, error) {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	if body, err := s.fetch(ctx, robotsURL); err == nil {
		sitemaps := parseRobots(body)
		body.Close()
		if len(sitemaps) > 0 {
			return sitemaps, nil
		}
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return []string{root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}, nil
}

// parseRobots extracts Sitemap: directives, matched case-insensitively.
func parseRobots(r io.Reader) []string {
	var sitemaps []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if v := strings.TrimSpace(value); v != "" {
			sitemaps = append(sitemaps, v)
		}
	}
	return sitemaps
}

// fetch GETs targetURL and returns its body on 200 OK.
func (s *SitemapService) fetch(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, docqa.Errorf(docqa.EFETCH, "invalid sitemap URL %q", targetURL)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, docqa.Errorf(docqa.EFETCH, "HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return resp.Body, nil
}
