package docqa

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Chunk represents a section of a page sized for embedding and retrieval.
type Chunk struct {
	ID        string    `json:"id"`
	SourceURL string    `json:"sourceUrl"`
	Title     string    `json:"title,omitempty"`
	Heading   string    `json:"heading,omitempty"`
	Content   string    `json:"content"`
	Position  int       `json:"position"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return Errorf(EINVALID, "chunk ID required")
	}
	if c.SourceURL == "" {
		return Errorf(EINVALID, "chunk source URL required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	if c.Position < 0 {
		return Errorf(EINVALID, "chunk position must not be negative")
	}
	return nil
}

// ChunkID returns the stable identifier of the chunk at position within the
// page at sourceURL. The same (url, position) pair always yields the same ID.
func ChunkID(sourceURL string, position int) string {
	h := xxhash.Sum64String(sourceURL + "#" + strconv.Itoa(position))
	return fmt.Sprintf("%016x", h)
}

// Chunker splits pages into chunks.
type Chunker interface {
	// Chunk splits the page content into ordered, overlapping chunks.
	// A page with empty content yields no chunks.
	Chunk(page *Page) []*Chunk
}
