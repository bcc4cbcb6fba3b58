package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	session, err := deps.Crawler.Crawl(deps.Ctx, deps.Config.Crawl.Seeds)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	for page := range session.Pages() {
		fmt.Fprintf(deps.Stdout, "%d  %7d  %s\n", page.Depth, len(page.Content), crawl.TruncateURL(page.URL, 100))
	}
	if err := session.Err(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: crawl interrupted: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, crawl.FormatStats(session.Stats()))
	return nil
}
