package docqa

import (
	"context"
	"time"
)

// Page represents a crawled documentation page.
// A Page is immutable once its content has been extracted.
type Page struct {
	URL       string
	Depth     int
	Title     string
	Content   string // Markdown; empty when extraction failed
	FetchedAt time.Time
}

// PageStore persists pages to storage with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type PageStore interface {
	Save(ctx context.Context, page *Page) error
	Commit() error
	Abort() error
}
