// Package trafilatura implements docqa.Extractor using go-trafilatura, the
// primary extractor of the crawl pipeline.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docqa"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements docqa.Extractor at compile time.
var _ docqa.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor. Fallback extraction is enabled and
// comment sections are dropped.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
		},
	}
}

// Extract returns the main content of rawHTML. It fails with EPARSE when
// the input is empty or no content node survives extraction.
func (e *Extractor) Extract(rawHTML string) (*docqa.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docqa.Errorf(docqa.EPARSE, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, docqa.Errorf(docqa.EPARSE, "trafilatura: %v", err)
	}
	if result == nil || result.ContentNode == nil {
		return nil, docqa.Errorf(docqa.EPARSE, "trafilatura: no content found")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, docqa.Errorf(docqa.EPARSE, "render content: %v", err)
	}
	if strings.TrimSpace(result.ContentText) == "" && strings.TrimSpace(buf.String()) == "" {
		return nil, docqa.Errorf(docqa.EPARSE, "trafilatura: empty content")
	}

	return &docqa.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: buf.String(),
	}, nil
}
