// Package rod implements docqa.Fetcher with a headless Chrome browser for
// documentation sites that render their content client-side.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds navigation and rendering of one page.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxPages is the number of pages rendered before the browser is
// restarted. Chrome memory grows under sustained load and never returns to
// its baseline.
const DefaultMaxPages = 75

// Ensure Fetcher implements docqa.Fetcher at compile time.
var _ docqa.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	timeout  time.Duration
	maxPages int64

	mu     sync.Mutex
	gen    *generation
	closed bool
}

// generation is one browser process and the fetches running on it.
type generation struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int64
	inflight sync.WaitGroup
}

// close waits for in-flight fetches, then stops the browser.
func (g *generation) close() error {
	g.inflight.Wait()
	err := g.browser.Close()
	g.launcher.Kill()
	return err
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxPages sets how many pages are rendered before a browser restart.
func WithMaxPages(n int64) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher launches a headless Chrome browser. Close must be called when
// the Fetcher is no longer needed.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}
	gen, err := launch()
	if err != nil {
		return nil, err
	}
	f.gen = gen
	return f, nil
}

// Fetch navigates to url and returns the rendered HTML, with open shadow
// roots serialized inline. Navigation failures are returned unwrapped so the
// crawler may retry them.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	gen, err := f.acquire()
	if err != nil {
		return "", err
	}
	defer gen.inflight.Done()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := gen.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", err
	}
	if err := docqa.CheckSameSite(url, info.URL); err != nil {
		return "", err
	}

	res, err := page.Eval(serializeShadowDOM)
	if err != nil {
		// Fall back to the light DOM.
		return page.HTML()
	}
	return res.Value.Str(), nil
}

// Close waits for in-flight fetches and releases browser resources.
// Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	gen := f.gen
	f.mu.Unlock()
	return gen.close()
}

// acquire returns the current browser generation, starting a new one once
// the page budget is spent. The caller must call inflight.Done.
func (f *Fetcher) acquire() (*generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, docqa.Errorf(docqa.EINVALID, "fetcher is closed")
	}
	if f.gen.pages >= f.maxPages {
		// Keep the old browser if a new one fails to start.
		if next, err := launch(); err == nil {
			old := f.gen
			f.gen = next
			go func() { _ = old.close() }()
		}
	}
	f.gen.pages++
	f.gen.inflight.Add(1)
	return f.gen, nil
}

// launch starts headless Chrome with flags that keep background tabs from
// being throttled.
func launch() (*generation, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &generation{browser: browser, launcher: l}, nil
}

// serializeShadowDOM returns document HTML with open shadow roots inlined.
const serializeShadowDOM = `() => {
  const walk = (node) => {
    if (node.nodeType !== Node.ELEMENT_NODE) {
      return node.nodeType === Node.TEXT_NODE ? node.textContent.replace(/&/g, "&amp;").replace(/</g, "&lt;") : "";
    }
    const clone = node.cloneNode(false);
    const open = clone.outerHTML.replace(/<\/[^>]+>$/, "");
    let inner = "";
    if (node.shadowRoot) {
      for (const child of node.shadowRoot.childNodes) inner += walk(child);
    }
    for (const child of node.childNodes) inner += walk(child);
    const close = clone.outerHTML.match(/<\/[^>]+>$/);
    return open + inner + (close ? close[0] : "");
  };
  return "<!DOCTYPE html>" + walk(document.documentElement);
}`
