package crawl_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("pops shallower links before deeper ones", func(t *testing.T) {
		t.Parallel()

		f := crawl.NewFrontier(100, 0.01)
		f.Push(docqa.DiscoveredLink{URL: "https://example.com/deep", Depth: 2, Priority: docqa.PriorityTOC})
		f.Push(docqa.DiscoveredLink{URL: "https://example.com/shallow", Depth: 1, Priority: docqa.PriorityFallback})
		f.Push(docqa.DiscoveredLink{URL: "https://example.com/", Depth: 0})

		var got []string
		for {
			link, ok := f.Pop()
			if !ok {
				break
			}
			got = append(got, link.URL)
		}

		assert.Equal(t, []string{
			"https://example.com/",
			"https://example.com/shallow",
			"https://example.com/deep",
		}, got)
	})

	t.Run("orders equal depth by priority then insertion", func(t *testing.T) {
		t.Parallel()

		f := crawl.NewFrontier(100, 0.01)
		f.Push(docqa.DiscoveredLink{URL: "https://example.com/c1", Depth: 1, Priority: docqa.PriorityContent})
		f.Push(docqa.DiscoveredLink{URL: "https://example.com/nav", Depth: 1, Priority: docqa.PriorityNavigation})
		f.Push(docqa.DiscoveredLink{URL: "https://example.com/c2", Depth: 1, Priority: docqa.PriorityContent})

		first, _ := f.Pop()
		second, _ := f.Pop()
		third, _ := f.Pop()

		assert.Equal(t, "https://example.com/nav", first.URL)
		assert.Equal(t, "https://example.com/c1", second.URL)
		assert.Equal(t, "https://example.com/c2", third.URL)
	})

	t.Run("deduplicates normalized URLs", func(t *testing.T) {
		t.Parallel()

		f := crawl.NewFrontier(100, 0.01)

		assert.True(t, f.Push(docqa.DiscoveredLink{URL: "https://example.com/docs"}))
		assert.False(t, f.Push(docqa.DiscoveredLink{URL: "https://EXAMPLE.com/docs#intro"}))
		assert.False(t, f.Push(docqa.DiscoveredLink{URL: "https://example.com:443/docs"}))
		assert.Equal(t, 1, f.Len())
		assert.True(t, f.Seen("https://example.com/docs#other"))
	})

	t.Run("stores normalized URL", func(t *testing.T) {
		t.Parallel()

		f := crawl.NewFrontier(100, 0.01)
		f.Push(docqa.DiscoveredLink{URL: "https://Example.com#top"})

		link, ok := f.Pop()

		require.True(t, ok)
		assert.Equal(t, "https://example.com/", link.URL)
	})

	t.Run("rejects unparseable and non-http URLs", func(t *testing.T) {
		t.Parallel()

		f := crawl.NewFrontier(100, 0.01)

		assert.False(t, f.Push(docqa.DiscoveredLink{URL: "javascript:void(0)"}))
		assert.False(t, f.Push(docqa.DiscoveredLink{URL: "://bad"}))
		assert.Equal(t, 0, f.Len())
	})

	t.Run("pop on empty frontier returns false", func(t *testing.T) {
		t.Parallel()

		_, ok := crawl.NewFrontier(10, 0.01).Pop()

		assert.False(t, ok)
	})

	t.Run("is safe for concurrent pushes", func(t *testing.T) {
		t.Parallel()

		f := crawl.NewFrontier(1000, 0.001)
		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range 20 {
					f.Push(docqa.DiscoveredLink{URL: fmt.Sprintf("https://example.com/%d/%d", i, j)})
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 200, f.Len())
	})
}
