package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of docqa.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (t *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return t.CountTokensFn(ctx, text)
}
