package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/crawl"
	"github.com/fwojciec/docqa/index"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Config      *docqa.Config
	Fingerprint string

	Crawler       *crawl.Crawler
	Chunker       docqa.Chunker
	Indexer       *index.Indexer
	Retriever     docqa.Retriever
	Asker         docqa.Asker
	Conversations docqa.ConversationService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config   string `short:"c" env:"DOCQA_CONFIG" help:"Config file (default ~/.docqa/config.toml)"`
	DB       string `env:"DOCQA_DB" help:"SQLite database path"`
	Postgres string `env:"DOCQA_POSTGRES_DSN" help:"PostgreSQL DSN; stores the index in pgvector"`
	Browser  bool   `help:"Render pages in headless Chrome"`
	Sitemap  bool   `help:"Queue URLs from the seeds' sitemaps"`
	Verbose  bool   `short:"v" help:"Log debug output to stderr"`

	Crawl   CrawlCmd   `cmd:"" help:"Crawl the seeds and list pages without indexing"`
	Index   IndexCmd   `cmd:"" help:"Build the index, or reuse it when the configuration is unchanged"`
	Ask     AskCmd     `cmd:"" help:"Ask a question about the indexed documentation"`
	Search  SearchCmd  `cmd:"" help:"Show the passages nearest to a query"`
	History HistoryCmd `cmd:"" help:"Show or clear conversation history"`
	Status  StatusCmd  `cmd:"" help:"Show index status"`
}

// apply overrides configuration with global flags.
func (c *CLI) apply(cfg *docqa.Config) {
	if c.DB != "" {
		cfg.Storage.Path = c.DB
	}
	if c.Postgres != "" {
		cfg.Storage.PostgresDSN = c.Postgres
	}
	if c.Browser {
		cfg.Crawl.Browser = true
	}
	if c.Sitemap {
		cfg.Crawl.Sitemap = true
	}
	if len(c.Crawl.Seeds) > 0 {
		cfg.Crawl.Seeds = c.Crawl.Seeds
	}
	if c.Crawl.Depth >= 0 {
		cfg.Crawl.MaxDepth = c.Crawl.Depth
	}
	if c.Crawl.Pages > 0 {
		cfg.Crawl.MaxPages = c.Crawl.Pages
	}
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Seeds []string `arg:"" optional:"" help:"Seed URLs (default: configured seeds)"`
	Depth int      `default:"-1" help:"Maximum link depth (default: configured)"`
	Pages int      `help:"Maximum pages (default: configured)"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	Force     bool   `short:"f" help:"Rebuild even when the index is current"`
	SavePages string `name:"save-pages" placeholder:"DIR" help:"Also write crawled pages as Markdown under DIR"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask about the documentation"`
	User     string `short:"u" default:"default" help:"User whose history records the exchange"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Search query"`
	K     int    `short:"k" help:"Number of results (default: configured top k)"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	User  string `short:"u" default:"default" help:"User whose history to show"`
	Limit int    `short:"n" help:"Show only the most recent turns"`
	Clear bool   `help:"Delete the user's history"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}
