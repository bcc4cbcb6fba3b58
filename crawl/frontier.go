package crawl

import (
	"container/heap"
	"sync"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/bloom"
)

// Compile-time interface verification.
var _ docqa.URLFrontier = (*Frontier)(nil)

// Frontier is the breadth-first queue of a crawl session. Links are popped by
// ascending depth, then descending priority, then insertion order, and every
// normalized URL is accepted at most once. It is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue *linkHeap
	seq   uint64
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &linkHeap{}
	heap.Init(h)
	return &Frontier{
		seen:  bloom.NewFilter(n, fpRate),
		queue: h,
	}
}

// Push adds a link to the frontier with its URL normalized.
// Returns false if the URL is invalid or has already been seen.
func (f *Frontier) Push(link docqa.DiscoveredLink) bool {
	u, err := NormalizeURL(link.URL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.Visit(u) {
		return false
	}
	link.URL = u
	heap.Push(f.queue, queued{link: link, seq: f.seq})
	f.seq++
	return true
}

// Pop returns the next link.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (docqa.DiscoveredLink, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return docqa.DiscoveredLink{}, false
	}
	q, _ := heap.Pop(f.queue).(queued)
	return q.link, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Seen returns true if the URL has been queued, compared in normalized form.
func (f *Frontier) Seen(rawURL string) bool {
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(u)
}

type queued struct {
	link docqa.DiscoveredLink
	seq  uint64
}

// linkHeap implements heap.Interface ordered for breadth-first traversal.
type linkHeap []queued

func (h linkHeap) Len() int { return len(h) }

func (h linkHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.link.Depth != b.link.Depth {
		return a.link.Depth < b.link.Depth
	}
	if a.link.Priority != b.link.Priority {
		return a.link.Priority > b.link.Priority
	}
	return a.seq < b.seq
}

func (h linkHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *linkHeap) Push(x any) {
	q, _ := x.(queued)
	*h = append(*h, q)
}

func (h *linkHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
