package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docqa"
)

var (
	_ docqa.Embedder      = (*LoggingEmbedder)(nil)
	_ docqa.QueryEmbedder = (*LoggingEmbedder)(nil)
)

// LoggingEmbedder wraps an Embedder with logging.
type LoggingEmbedder struct {
	next   docqa.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next docqa.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Model returns the wrapped embedder's model.
func (e *LoggingEmbedder) Model() string {
	return e.next.Model()
}

// Embed delegates to the wrapped embedder and logs the batch.
func (e *LoggingEmbedder) Embed(ctx context.Context, texts []string) (vecs [][]float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed",
			"model", e.next.Model(),
			"texts", len(texts),
			"dimension", dimension(vecs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, texts)
}

// EmbedQuery uses the wrapped embedder's query encoding when it has one.
func (e *LoggingEmbedder) EmbedQuery(ctx context.Context, query string) (vec []float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed query",
			"model", e.next.Model(),
			"dimension", len(vec),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())

	if qe, ok := e.next.(docqa.QueryEmbedder); ok {
		return qe.EmbedQuery(ctx, query)
	}
	vecs, err := e.next.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, docqa.Errorf(docqa.EEMBED, "expected 1 embedding, got %d", len(vecs))
	}
	return vecs[0], nil
}

func dimension(vecs [][]float32) int {
	if len(vecs) == 0 {
		return 0
	}
	return len(vecs[0])
}
