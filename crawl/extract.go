package crawl

import (
	"strings"

	"github.com/fwojciec/docqa"
)

var _ docqa.Extractor = (ExtractorChain)(nil)

// ExtractorChain tries each extractor in turn and returns the first result
// with non-empty content. Main-content extractors go first; a permissive
// boilerplate stripper makes a good last resort.
type ExtractorChain []docqa.Extractor

// Extract returns the first non-empty extraction.
// Returns EPARSE if every extractor fails or finds nothing.
func (c ExtractorChain) Extract(html string) (*docqa.ExtractResult, error) {
	var lastErr error
	var title string
	for _, e := range c {
		result, err := e.Extract(html)
		if err != nil {
			lastErr = err
			continue
		}
		if title == "" {
			title = result.Title
		}
		if strings.TrimSpace(result.ContentHTML) == "" {
			continue
		}
		if result.Title == "" {
			result.Title = title
		}
		return result, nil
	}
	if lastErr != nil {
		return nil, docqa.Errorf(docqa.EPARSE, "no extractor found content: %s", docqa.ErrorMessage(lastErr))
	}
	return nil, docqa.Errorf(docqa.EPARSE, "no extractor found content")
}
