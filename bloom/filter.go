// Package bloom provides the visited set of a crawl session.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a probabilistic set of normalized URLs. A URL reported as absent
// has never been added; a URL reported as present was added with high
// probability, so a false positive only ever skips a page.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a Filter sized for n expected URLs at the given false
// positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{f: bloom.NewWithEstimates(n, fpRate)}
}

// Add records url as visited.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test reports whether url might have been visited.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// Visit records url and reports whether it was already present.
func (f *Filter) Visit(url string) bool {
	return f.f.TestAndAddString(url)
}

// EstimatedCount returns the approximate number of visited URLs.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
