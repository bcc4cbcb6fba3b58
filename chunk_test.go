package docqa_test

import (
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	t.Parallel()

	t.Run("is stable for the same url and position", func(t *testing.T) {
		t.Parallel()

		a := docqa.ChunkID("https://spark.apache.org/docs/latest/", 3)
		b := docqa.ChunkID("https://spark.apache.org/docs/latest/", 3)

		assert.Equal(t, a, b)
		assert.Len(t, a, 16)
	})

	t.Run("differs across positions and urls", func(t *testing.T) {
		t.Parallel()

		base := docqa.ChunkID("https://example.com/a", 0)

		assert.NotEqual(t, base, docqa.ChunkID("https://example.com/a", 1))
		assert.NotEqual(t, base, docqa.ChunkID("https://example.com/b", 0))
	})
}

func TestChunk_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *docqa.Chunk {
		return &docqa.Chunk{
			ID:        docqa.ChunkID("https://example.com/a", 0),
			SourceURL: "https://example.com/a",
			Content:   "text",
		}
	}

	tests := []struct {
		name   string
		mutate func(c *docqa.Chunk)
		msg    string
	}{
		{"missing id", func(c *docqa.Chunk) { c.ID = "" }, "chunk ID required"},
		{"missing source", func(c *docqa.Chunk) { c.SourceURL = "" }, "chunk source URL required"},
		{"missing content", func(c *docqa.Chunk) { c.Content = "" }, "chunk content required"},
		{"negative position", func(c *docqa.Chunk) { c.Position = -1 }, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tt.mutate(c)

			err := c.Validate()

			assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
			assert.Contains(t, docqa.ErrorMessage(err), tt.msg)
		})
	}

	t.Run("accepts a complete chunk", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, valid().Validate())
	})
}
