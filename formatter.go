package docqa

import (
	"fmt"
	"strings"
)

// FormatSources formats source URLs as a numbered citation list, one per
// line, in the order given.
func FormatSources(sources []string) string {
	if len(sources) == 0 {
		return ""
	}

	var b strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, src)
	}
	return b.String()
}

// UniqueSources returns the source URLs of results in order of first
// appearance, without duplicates.
func UniqueSources(results []SearchResult) []string {
	seen := make(map[string]bool, len(results))
	var sources []string
	for _, r := range results {
		if r.Chunk == nil || seen[r.Chunk.SourceURL] {
			continue
		}
		seen[r.Chunk.SourceURL] = true
		sources = append(sources, r.Chunk.SourceURL)
	}
	return sources
}
