package crawl_test

import (
	"testing"

	"github.com/fwojciec/docqa/crawl"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	url := "https://example.com/very/long/path/to/documentation"

	assert.Equal(t, "https://x.com", crawl.TruncateURL("https://x.com", 50))
	assert.Equal(t, ".../to/documentation", crawl.TruncateURL(url, 20))
	assert.Len(t, crawl.TruncateURL(url, 20), 20)
	assert.Empty(t, crawl.TruncateURL(url, 0))
	assert.Equal(t, "htt", crawl.TruncateURL(url, 3))
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", crawl.FormatBytes(512))
	assert.Equal(t, "1.5 KB", crawl.FormatBytes(1536))
	assert.Equal(t, "2.0 MB", crawl.FormatBytes(2*1024*1024))
}

func TestFormatTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "~999 tokens", crawl.FormatTokens(999))
	assert.Equal(t, "~2k tokens", crawl.FormatTokens(1500))
}

func TestFormatStats(t *testing.T) {
	t.Parallel()

	t.Run("omits tokens when not counted", func(t *testing.T) {
		t.Parallel()

		out := crawl.FormatStats(crawl.Stats{Fetched: 3, Failed: 1, External: 4, Bytes: 2048})

		assert.Equal(t, "3 pages fetched, 1 failed, 0 unparsed, 4 external links skipped, 2.0 KB", out)
	})

	t.Run("includes tokens when counted", func(t *testing.T) {
		t.Parallel()

		out := crawl.FormatStats(crawl.Stats{Fetched: 1, Tokens: 1200})

		assert.Contains(t, out, "~1k tokens")
	})
}
