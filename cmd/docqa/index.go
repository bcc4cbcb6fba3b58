package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/crawl"
	"github.com/fwojciec/docqa/fs"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	var chunks []*docqa.Chunk
	source := func(ctx context.Context) ([]*docqa.Chunk, error) {
		var err error
		chunks, err = c.collect(ctx, deps)
		return chunks, err
	}

	res, err := deps.Indexer.Ensure(deps.Ctx, deps.Fingerprint, c.Force, source)
	if err != nil && res != nil && res.Build != nil && len(res.Build.FailedBatches) > 0 {
		failed := res.Build.FailedBatches
		fmt.Fprintf(deps.Stderr, "Retrying %d failed batch(es)...\n", len(failed))
		retry, rerr := deps.Indexer.Retry(deps.Ctx, deps.Fingerprint, chunks, failed)
		if rerr == nil {
			fmt.Fprintf(deps.Stdout, "Indexed %d chunks (%d after retry)\n", res.Build.Indexed+retry.Indexed, retry.Indexed)
			return nil
		}
		err = rerr
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if !res.Rebuilt {
		fmt.Fprintf(deps.Stdout, "Index up to date (%d chunks)\n", res.Meta.ChunkCount)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Indexed %d chunks in %s\n", res.Meta.ChunkCount, res.Build.Duration.Round(time.Millisecond))
	return nil
}

// collect crawls the configured seeds and chunks every page. With
// --save-pages the pages are also written as Markdown, replacing the
// directory only when the crawl completes.
func (c *IndexCmd) collect(ctx context.Context, deps *Dependencies) ([]*docqa.Chunk, error) {
	session, err := deps.Crawler.Crawl(ctx, deps.Config.Crawl.Seeds)
	if err != nil {
		return nil, err
	}

	var store docqa.PageStore
	if c.SavePages != "" {
		dir := filepath.Clean(c.SavePages)
		store = fs.NewFileStore(filepath.Dir(dir), filepath.Base(dir))
	}

	var chunks []*docqa.Chunk
	for page := range session.Pages() {
		if store != nil {
			if err := store.Save(ctx, page); err != nil {
				_ = store.Abort()
				return nil, fmt.Errorf("save page %s: %w", page.URL, err)
			}
		}
		chunks = append(chunks, deps.Chunker.Chunk(page)...)
	}
	if err := session.Err(); err != nil {
		if store != nil {
			_ = store.Abort()
		}
		return nil, err
	}
	if store != nil {
		if err := store.Commit(); err != nil {
			return nil, fmt.Errorf("save pages: %w", err)
		}
	}

	fmt.Fprintf(deps.Stderr, "Crawled: %s\n", crawl.FormatStats(session.Stats()))
	return chunks, nil
}
