// Package crawl provides bounded, breadth-first crawling of documentation
// sites. A Crawler holds the collaborators and limits; each call to Crawl
// starts a Session that owns its own visited set and frontier and produces
// pages lazily as the caller iterates.
package crawl

import (
	"context"
	"iter"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/docqa"
	"golang.org/x/sync/errgroup"
)

// Frontier configuration for a crawl session.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.001
)

// DefaultConcurrency is the number of pages fetched in parallel when
// Crawler.Concurrency is not set.
const DefaultConcurrency = 4

// Crawler fetches pages reachable from seed URLs within a depth and page
// budget, following only links on the registrable domain of their seed.
type Crawler struct {
	Fetcher      docqa.Fetcher
	Extractor    docqa.Extractor
	Converter    docqa.Converter
	LinkSelector docqa.LinkSelector

	// Optional collaborators.
	Sitemaps     docqa.SitemapService
	RateLimiter  docqa.DomainLimiter
	TokenCounter docqa.TokenCounter
	Logger       *slog.Logger
	Progress     ProgressFunc

	MaxDepth    int
	MaxPages    int
	Concurrency int
	RetryDelays []time.Duration
}

// Stats counts what happened during a crawl.
type Stats struct {
	Fetched  int // pages fetched successfully
	Failed   int // fetch failures, including unreachable seeds
	Unparsed int // fetched pages whose content could not be extracted
	External int // distinct off-domain links seen and skipped
	Bytes    int // HTML bytes fetched
	Tokens   int // tokens of extracted content, when a TokenCounter is set
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Depth   int
	Fetched int
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressFetched ProgressType = iota
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl validates the seeds and returns a Session ready to be iterated.
// Nothing is fetched until the caller ranges over Session.Pages.
func (c *Crawler) Crawl(ctx context.Context, seeds []string) (*Session, error) {
	if c.Fetcher == nil || c.Extractor == nil || c.Converter == nil {
		return nil, docqa.Errorf(docqa.EINVALID, "crawler requires a fetcher, an extractor and a converter")
	}
	if c.MaxDepth < 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "max depth must not be negative")
	}
	if c.MaxPages <= 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "max pages must be positive")
	}
	if len(seeds) == 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "at least one seed URL required")
	}

	links := make([]docqa.DiscoveredLink, 0, len(seeds))
	for _, seed := range seeds {
		if err := docqa.ValidateSeed(seed); err != nil {
			return nil, err
		}
		domain, err := docqa.RegistrableDomain(seed)
		if err != nil {
			return nil, err
		}
		links = append(links, docqa.DiscoveredLink{
			URL:      seed,
			Priority: docqa.PrioritySitemap,
			Source:   "seed",
			Depth:    0,
			Domain:   domain,
		})
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Session{
		c:           c,
		ctx:         ctx,
		seeds:       links,
		frontier:    NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate),
		external:    make(map[string]struct{}),
		logger:      logger,
		delays:      delays,
		concurrency: concurrency,
	}, nil
}

// Session is a single crawl. Its visited set and frontier live only as long
// as the session. A Session can be iterated once.
type Session struct {
	c           *Crawler
	ctx         context.Context
	seeds       []docqa.DiscoveredLink
	frontier    *Frontier
	external    map[string]struct{}
	logger      *slog.Logger
	delays      []time.Duration
	concurrency int

	mu      sync.Mutex
	stats   Stats
	err     error
	started bool
}

// Stats returns the counters accumulated so far.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Err returns the context error that ended the crawl early, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Pages returns the crawled pages in breadth-first order. Pages are fetched
// in batches as the caller iterates; breaking out of the loop stops the
// crawl. Fetch failures are counted and skipped. A page whose content cannot
// be extracted is still yielded, with empty Content.
func (s *Session) Pages() iter.Seq[*docqa.Page] {
	return func(yield func(*docqa.Page) bool) {
		s.mu.Lock()
		if s.started {
			s.mu.Unlock()
			return
		}
		s.started = true
		s.mu.Unlock()

		defer func() {
			s.notify(ProgressEvent{Type: ProgressFinished, Fetched: s.Stats().Fetched})
		}()

		for _, seed := range s.seeds {
			s.frontier.Push(seed)
		}
		s.discoverSitemaps()

		for {
			remaining := s.c.MaxPages - s.Stats().Fetched
			if remaining <= 0 {
				return
			}
			if err := s.ctx.Err(); err != nil {
				s.fail(err)
				return
			}

			batch := s.nextBatch(min(s.concurrency, remaining))
			if len(batch) == 0 {
				return
			}

			results := s.fetchBatch(batch)
			if err := s.ctx.Err(); err != nil {
				s.fail(err)
				return
			}

			for _, r := range results {
				if r.err != nil {
					s.recordFailure(r)
					continue
				}
				if !yield(s.process(r)) {
					return
				}
			}
		}
	}
}

// fetchResult holds the outcome of fetching a single link.
type fetchResult struct {
	link docqa.DiscoveredLink
	html string
	err  error
}

func (s *Session) nextBatch(n int) []docqa.DiscoveredLink {
	batch := make([]docqa.DiscoveredLink, 0, n)
	for len(batch) < n {
		link, ok := s.frontier.Pop()
		if !ok {
			break
		}
		batch = append(batch, link)
	}
	return batch
}

// fetchBatch fetches links concurrently and returns results in batch order,
// so a crawl over unchanged content is reproducible.
func (s *Session) fetchBatch(batch []docqa.DiscoveredLink) []fetchResult {
	results := make([]fetchResult, len(batch))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, link := range batch {
		g.Go(func() error {
			results[i] = s.fetch(link)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Session) fetch(link docqa.DiscoveredLink) fetchResult {
	result := fetchResult{link: link}

	if s.c.RateLimiter != nil {
		u, err := url.Parse(link.URL)
		if err != nil {
			result.err = docqa.Errorf(docqa.EFETCH, "invalid URL %q", link.URL)
			return result
		}
		if err := s.c.RateLimiter.Wait(s.ctx, u.Hostname()); err != nil {
			result.err = err
			return result
		}
	}

	html, err := FetchWithRetry(s.ctx, link.URL, s.c.Fetcher.Fetch, s.logger, s.delays)
	if err != nil {
		if docqa.ErrorCode(err) != docqa.EFETCH && s.ctx.Err() == nil {
			err = docqa.Errorf(docqa.EFETCH, "fetch %s: %v", link.URL, err)
		}
		result.err = err
		return result
	}
	result.html = html
	return result
}

func (s *Session) recordFailure(r fetchResult) {
	s.mu.Lock()
	s.stats.Failed++
	s.mu.Unlock()

	if r.link.Depth == 0 {
		s.logger.Warn("seed unreachable", "url", r.link.URL, "err", r.err)
	} else {
		s.logger.Info("page skipped", "url", r.link.URL, "depth", r.link.Depth, "err", r.err)
	}
	s.notify(ProgressEvent{Type: ProgressFailed, URL: r.link.URL, Depth: r.link.Depth, Fetched: s.Stats().Fetched, Error: r.err})
}

// process turns fetched HTML into a Page and queues its in-scope links.
func (s *Session) process(r fetchResult) *docqa.Page {
	page := &docqa.Page{
		URL:       r.link.URL,
		Depth:     r.link.Depth,
		FetchedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.stats.Fetched++
	s.stats.Bytes += len(r.html)
	s.mu.Unlock()

	if r.link.Depth < s.c.MaxDepth {
		s.enqueueLinks(r.link, r.html)
	}

	title, content, err := s.extract(r.html)
	if err != nil {
		s.mu.Lock()
		s.stats.Unparsed++
		s.mu.Unlock()
		s.logger.Warn("page not parsed", "url", page.URL, "err", err)
	} else {
		page.Title = title
		page.Content = content
		s.countTokens(content)
	}

	s.notify(ProgressEvent{Type: ProgressFetched, URL: page.URL, Depth: page.Depth, Fetched: s.Stats().Fetched})
	return page
}

func (s *Session) extract(html string) (title, content string, err error) {
	extracted, err := s.c.Extractor.Extract(html)
	if err != nil {
		return "", "", err
	}
	content, err = s.c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return "", "", docqa.Errorf(docqa.EPARSE, "convert: %s", docqa.ErrorMessage(err))
	}
	return extracted.Title, content, nil
}

func (s *Session) countTokens(content string) {
	if s.c.TokenCounter == nil || content == "" {
		return
	}
	n, err := s.c.TokenCounter.CountTokens(s.ctx, content)
	if err != nil {
		s.logger.Debug("token count failed", "err", err)
		return
	}
	s.mu.Lock()
	s.stats.Tokens += n
	s.mu.Unlock()
}

func (s *Session) enqueueLinks(parent docqa.DiscoveredLink, html string) {
	if s.c.LinkSelector == nil {
		return
	}
	links, err := s.c.LinkSelector.ExtractLinks(html, parent.URL)
	if err != nil {
		s.logger.Debug("link extraction failed", "url", parent.URL, "err", err)
		return
	}
	for _, link := range links {
		link.Depth = parent.Depth + 1
		link.Domain = parent.Domain
		s.push(link)
	}
}

// push queues link if it is on its seed's registrable domain and records it
// as external otherwise.
func (s *Session) push(link docqa.DiscoveredLink) {
	normalized, err := NormalizeURL(link.URL)
	if err != nil {
		return
	}
	domain, err := docqa.RegistrableDomain(normalized)
	if err != nil {
		return
	}
	if domain != link.Domain {
		s.mu.Lock()
		if _, ok := s.external[normalized]; !ok {
			s.external[normalized] = struct{}{}
			s.stats.External++
		}
		s.mu.Unlock()
		return
	}
	s.frontier.Push(link)
}

// discoverSitemaps queues sitemap URLs under each seed at depth 1.
func (s *Session) discoverSitemaps() {
	if s.c.Sitemaps == nil || s.c.MaxDepth < 1 {
		return
	}
	for _, seed := range s.seeds {
		urls, err := s.c.Sitemaps.DiscoverURLs(s.ctx, seed.URL)
		if err != nil {
			s.logger.Info("sitemap unavailable", "url", seed.URL, "err", err)
			continue
		}
		for _, u := range urls {
			s.push(docqa.DiscoveredLink{
				URL:      u,
				Priority: docqa.PrioritySitemap,
				Source:   "sitemap",
				Depth:    1,
				Domain:   seed.Domain,
			})
		}
	}
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Session) notify(event ProgressEvent) {
	if s.c.Progress != nil {
		s.c.Progress(event)
	}
}
