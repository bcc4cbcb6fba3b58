package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/answer"
	"github.com/fwojciec/docqa/chunk"
	"github.com/fwojciec/docqa/crawl"
	"github.com/fwojciec/docqa/gemini"
	"github.com/fwojciec/docqa/goquery"
	"github.com/fwojciec/docqa/htmltomarkdown"
	docqahttp "github.com/fwojciec/docqa/http"
	"github.com/fwojciec/docqa/index"
	docqaopenai "github.com/fwojciec/docqa/openai"
	"github.com/fwojciec/docqa/postgres"
	"github.com/fwojciec/docqa/readability"
	"github.com/fwojciec/docqa/rod"
	docqaslog "github.com/fwojciec/docqa/slog"
	"github.com/fwojciec/docqa/sqlite"
	"github.com/fwojciec/docqa/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Default database path, used when neither the flag nor the config
	// file names one. Set before calling Run().
	DBPath string

	// Databases opened by Run.
	DB *sqlite.DB
	PG *postgres.DB

	// Closers run in reverse order on Close.
	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	if m.PG != nil {
		m.PG.Close()
		m.PG = nil
	}
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.DB = nil
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docqa"),
		kong.Description("Answer questions from crawled documentation, and only from it."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docqa --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = kongCtx.Selected().Name

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: check %s or set DOCQA_CONFIG\n", configPathOrDefault(cli.Config))
		return err
	}
	cli.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	deps.Config = cfg
	deps.Fingerprint = docqa.Fingerprint(cfg)
	deps.Logger = newLogger(stderr, cli.Verbose)
	defer m.Close()

	// Crawl previews need neither storage nor models.
	if cmd == "crawl" {
		crawler, err := m.newCrawler(deps)
		if err != nil {
			return err
		}
		deps.Crawler = crawler
		return kongCtx.Run(deps)
	}

	if err := m.openStorage(ctx, deps, stderr); err != nil {
		return err
	}

	needsEmbedder := cmd == "index" || cmd == "ask" || cmd == "search"
	if needsEmbedder {
		embedder, err := newEmbedder(ctx, cfg.Embedding, stderr)
		if err != nil {
			return err
		}
		deps.Indexer.Embedder = docqaslog.NewLoggingEmbedder(embedder, deps.Logger)
		deps.Indexer.Dimension = cfg.Embedding.Dimension
		retriever := index.NewRetriever(deps.Indexer, cfg.Retrieval.MinSimilarity)
		deps.Retriever = docqaslog.NewLoggingRetriever(retriever, deps.Logger)
	}

	switch cmd {
	case "index":
		crawler, err := m.newCrawler(deps)
		if err != nil {
			return err
		}
		deps.Crawler = crawler
		deps.Chunker = chunk.NewChunker(chunk.WithSize(cfg.Chunk.Size), chunk.WithOverlap(cfg.Chunk.Overlap))
	case "ask":
		generator, err := newGenerator(ctx, cfg.Generation, stderr)
		if err != nil {
			return err
		}
		deps.Asker = &answer.Policy{
			Retriever:          deps.Retriever,
			Generator:          docqaslog.NewLoggingGenerator(generator, deps.Logger),
			Conversations:      deps.Conversations,
			Logger:             deps.Logger,
			TopK:               cfg.Retrieval.TopK,
			IrrelevantDistance: cfg.Retrieval.IrrelevantDistance,
			Temperature:        cfg.Generation.Temperature,
			MaxTokens:          cfg.Generation.MaxTokens,
			Timeout:            time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
			HistoryTurns:       cfg.Generation.HistoryTurns,
			BlockedTopics:      cfg.Retrieval.BlockedTopics,
			OnTransition: func(from, to docqa.AnswerState) {
				deps.Logger.Debug("answer state", "from", from, "to", to)
			},
		}
	}

	return kongCtx.Run(deps)
}

// openStorage opens the SQLite file for history and, unless a PostgreSQL
// DSN is configured, for the index too.
func (m *Main) openStorage(ctx context.Context, deps *Dependencies, stderr io.Writer) error {
	cfg := deps.Config.Storage
	path := cfg.Path
	if path == "" {
		path = m.DBPath
	}
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}

	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCQA_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	deps.Conversations = sqlite.NewConversationService(m.DB)

	var store docqa.IndexStore = sqlite.NewIndexStore(m.DB)
	if cfg.PostgresDSN != "" {
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: the database needs the pgvector extension")
			return err
		}
		m.PG = pg
		store = postgres.NewIndexStore(pg)
	}

	deps.Indexer = &index.Indexer{
		Store:       store,
		Logger:      deps.Logger,
		BatchSize:   deps.Config.Embedding.BatchSize,
		Concurrency: deps.Config.Embedding.Concurrency,
	}
	return nil
}

// newCrawler wires the fetch, extraction and link collaborators.
func (m *Main) newCrawler(deps *Dependencies) (*crawl.Crawler, error) {
	cfg := deps.Config.Crawl
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	var fetcher docqa.Fetcher
	if cfg.Browser {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(timeout))
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed for --browser")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	} else {
		fetcher = docqahttp.NewFetcher(docqahttp.WithTimeout(timeout))
	}
	m.closers = append(m.closers, fetcher.Close)

	c := &crawl.Crawler{
		Fetcher: docqaslog.NewLoggingFetcher(fetcher, deps.Logger),
		Extractor: crawl.ExtractorChain{
			trafilatura.NewExtractor(),
			readability.NewExtractor(),
			goquery.NewExtractor(),
		},
		Converter:    htmltomarkdown.NewConverter(),
		LinkSelector: goquery.NewLinkSelector(),
		Logger:       deps.Logger,
		MaxDepth:     cfg.MaxDepth,
		MaxPages:     cfg.MaxPages,
		Concurrency:  cfg.Concurrency,
		RetryDelays:  crawl.DefaultRetryDelays(),
	}
	if cfg.RequestsPerSecond > 0 {
		c.RateLimiter = crawl.NewDomainLimiter(cfg.RequestsPerSecond)
	}
	if cfg.Sitemap {
		c.Sitemaps = docqaslog.NewLoggingSitemapService(docqahttp.NewSitemapService(nil), deps.Logger)
	}
	// Token counts are informational; a missing tokenizer vocabulary only
	// drops them from the summary.
	if tc, err := gemini.NewTokenCounter(""); err == nil {
		c.TokenCounter = tc
	} else {
		deps.Logger.Debug("token counting disabled", "err", err)
	}
	return c, nil
}

func newEmbedder(ctx context.Context, cfg docqa.EmbeddingConfig, stderr io.Writer) (docqa.Embedder, error) {
	switch cfg.Provider {
	case docqa.ProviderOpenAI:
		client := docqaopenai.NewClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_BASE_URL"))
		return docqaopenai.NewEmbedder(client, cfg.Model, cfg.Dimension), nil
	default:
		client, err := newGeminiClient(ctx, stderr)
		if err != nil {
			return nil, err
		}
		return gemini.NewEmbedder(client, cfg.Model, cfg.Dimension), nil
	}
}

func newGenerator(ctx context.Context, cfg docqa.GenerationConfig, stderr io.Writer) (docqa.Generator, error) {
	switch cfg.Provider {
	case docqa.ProviderOpenAI:
		client := docqaopenai.NewClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_BASE_URL"))
		return docqaopenai.NewGenerator(client, cfg.Model), nil
	default:
		client, err := newGeminiClient(ctx, stderr)
		if err != nil {
			return nil, err
		}
		return gemini.NewGenerator(client, cfg.Model), nil
	}
}

func newGeminiClient(ctx context.Context, stderr io.Writer) (*genai.Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return client, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("DOCQA_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "docqa.db"
	}
	return filepath.Join(home, ".docqa", "docqa.db")
}
