package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docqa"
)

// Ensure Extractor implements docqa.Extractor at compile time.
var _ docqa.Extractor = (*Extractor)(nil)

// boilerplate lists elements removed before the main content is selected.
const boilerplate = "script, style, noscript, template, nav, header, footer, aside, form, iframe, svg, " +
	"[role=\"navigation\"], [role=\"banner\"], [role=\"contentinfo\"], .sidebar, .toc, .table-of-contents"

// contentRoots are tried in order; the first non-empty match wins.
var contentRoots = []string{"main", "article", "[role=\"main\"]", ".content", ".doc-content", "body"}

// Extractor is a last-resort content extractor. It strips common page chrome
// and returns the first recognizable content container. It never scores
// candidates, so it only runs after the readability-style extractors fail.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the main content of html with boilerplate removed.
func (e *Extractor) Extract(html string) (*docqa.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docqa.Errorf(docqa.EPARSE, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find(boilerplate).Remove()

	for _, root := range contentRoots {
		sel := doc.Find(root).First()
		if sel.Length() == 0 || strings.TrimSpace(sel.Text()) == "" {
			continue
		}
		content, err := sel.Html()
		if err != nil {
			return nil, docqa.Errorf(docqa.EPARSE, "failed to render content: %v", err)
		}
		return &docqa.ExtractResult{
			Title:       title,
			ContentHTML: strings.TrimSpace(content),
		}, nil
	}

	return nil, docqa.Errorf(docqa.EPARSE, "no content found")
}
