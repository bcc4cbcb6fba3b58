// Package readability implements docqa.Extractor using go-readability.
// It is the second extractor in the chain, used when trafilatura yields
// nothing.
package readability

import (
	"strings"

	"github.com/fwojciec/docqa"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements docqa.Extractor at compile time.
var _ docqa.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the readable article in rawHTML, or EPARSE when there is
// none.
func (e *Extractor) Extract(rawHTML string) (*docqa.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docqa.Errorf(docqa.EPARSE, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, docqa.Errorf(docqa.EPARSE, "readability: %v", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, docqa.Errorf(docqa.EPARSE, "readability: no readable content")
	}

	return &docqa.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
