// Package goquery implements HTML link selection and a fallback content
// extractor using PuerkitoBio/goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docqa"
)

// Ensure LinkSelector implements docqa.LinkSelector at compile time.
var _ docqa.LinkSelector = (*LinkSelector)(nil)

// selectorConfig defines a CSS selector with its priority and source label.
type selectorConfig struct {
	selector string
	priority docqa.LinkPriority
	source   string
}

// defaultSelectors use class names and landmarks common to documentation
// generators, highest priority first.
var defaultSelectors = []selectorConfig{
	{".toc a[href], .table-of-contents a[href], .sidebar a[href], aside a[href]", docqa.PriorityTOC, "toc"},
	{"nav a[href], [role=\"navigation\"] a[href], .nav a[href], .menu a[href], .navbar a[href]", docqa.PriorityNavigation, "nav"},
	{"main a[href], article a[href], .content a[href], .doc-content a[href]", docqa.PriorityContent, "content"},
	{"footer a[href], .footer a[href]", docqa.PriorityFooter, "footer"},
	{"a[href]", docqa.PriorityFallback, "fallback"},
}

// LinkSelector extracts prioritized links using universal CSS selectors that
// work across documentation frameworks.
type LinkSelector struct{}

// NewLinkSelector creates a new LinkSelector.
func NewLinkSelector() *LinkSelector {
	return &LinkSelector{}
}

// ExtractLinks parses HTML and returns every http(s) link in document order
// of first occurrence, each with the highest priority it was found at.
// Fragments are stripped and links back to the page itself are dropped.
// A <base href> element, when present, is honored.
func (s *LinkSelector) ExtractLinks(html string, baseURL string) ([]docqa.DiscoveredLink, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docqa.Errorf(docqa.EPARSE, "failed to parse HTML: %v", err)
	}

	resolveBase := base
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(href); err == nil {
			resolveBase = base.ResolveReference(ref)
		}
	}

	// Track seen URLs with their index in the result slice for O(1) updates
	seen := make(map[string]int)
	var links []docqa.DiscoveredLink

	for _, config := range defaultSelectors {
		doc.Find(config.selector).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if href == "" || isNonHTTPLink(href) {
				return
			}

			resolved := resolveURL(resolveBase, base, href)
			if resolved == "" {
				return
			}

			link := docqa.DiscoveredLink{
				URL:      resolved,
				Priority: config.priority,
				Text:     strings.TrimSpace(sel.Text()),
				Source:   config.source,
			}
			if idx, ok := seen[resolved]; ok {
				if config.priority > links[idx].Priority {
					links[idx] = link
				}
				return
			}
			seen[resolved] = len(links)
			links = append(links, link)
		})
	}

	return links, nil
}

// resolveURL resolves href against resolveBase and strips the fragment.
// Returns "" for unparseable links, non-http(s) results and links pointing
// back at page.
func resolveURL(resolveBase, page *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := resolveBase.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	self := *page
	self.Fragment = ""
	self.RawFragment = ""
	result := resolved.String()
	if result == self.String() {
		return ""
	}
	return result
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
