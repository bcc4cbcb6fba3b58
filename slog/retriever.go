package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docqa"
)

var _ docqa.Retriever = (*LoggingRetriever)(nil)

// LoggingRetriever wraps a Retriever with logging.
type LoggingRetriever struct {
	next   docqa.Retriever
	logger *slog.Logger
}

// NewLoggingRetriever creates a new LoggingRetriever.
func NewLoggingRetriever(next docqa.Retriever, logger *slog.Logger) *LoggingRetriever {
	return &LoggingRetriever{next: next, logger: logger}
}

// Retrieve delegates to the wrapped retriever and logs the best distance.
func (r *LoggingRetriever) Retrieve(ctx context.Context, query string, k int) (results []docqa.SearchResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"query", query,
			"k", k,
			"count", len(results),
		}
		if len(results) > 0 {
			attrs = append(attrs, "best_distance", results[0].Distance)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		r.logger.Info("retrieve", attrs...)
	}(time.Now())
	return r.next.Retrieve(ctx, query, k)
}
