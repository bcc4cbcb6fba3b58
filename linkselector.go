package docqa

// LinkPriority represents crawl priority (higher = more important).
type LinkPriority int

// Link priority levels for crawl ordering within a depth.
const (
	PriorityIgnore     LinkPriority = 0
	PriorityFallback   LinkPriority = 10
	PriorityFooter     LinkPriority = 20
	PriorityContent    LinkPriority = 50
	PriorityNavigation LinkPriority = 100
	PriorityTOC        LinkPriority = 110
	PrioritySitemap    LinkPriority = 120
)

// DiscoveredLink represents a URL found during a crawl.
type DiscoveredLink struct {
	URL      string
	Priority LinkPriority
	Text     string
	Source   string // "nav", "toc", "content", "footer", "fallback", "seed", "sitemap"

	// Depth is the number of links followed from a seed; seeds are depth 0.
	Depth int

	// Domain is the registrable domain of the seed this link descends from.
	Domain string
}

// LinkSelector extracts prioritized links from HTML.
type LinkSelector interface {
	// ExtractLinks parses HTML and returns every http(s) link with a priority.
	// The baseURL is used to resolve relative URLs. Links to other hosts are
	// returned too; the caller decides what is in scope.
	ExtractLinks(html string, baseURL string) ([]DiscoveredLink, error)
}
