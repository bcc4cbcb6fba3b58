package docqa

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Config holds every tunable of the pipeline.
type Config struct {
	Crawl      CrawlConfig      `toml:"crawl"`
	Chunk      ChunkConfig      `toml:"chunk"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Generation GenerationConfig `toml:"generation"`
	Retrieval  RetrievalConfig  `toml:"retrieval"`
	Storage    StorageConfig    `toml:"storage"`
}

// CrawlConfig bounds a crawl.
type CrawlConfig struct {
	Seeds             []string `toml:"seeds"`
	MaxDepth          int      `toml:"max_depth"`
	MaxPages          int      `toml:"max_pages"`
	Concurrency       int      `toml:"concurrency"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	TimeoutSeconds    int      `toml:"timeout_seconds"`
	Sitemap           bool     `toml:"sitemap"`
	Browser           bool     `toml:"browser"`
}

// ChunkConfig sizes chunks. Size counts characters, not bytes; Overlap is a
// fraction of Size.
type ChunkConfig struct {
	Size    int     `toml:"size"`
	Overlap float64 `toml:"overlap"`
}

// EmbeddingConfig selects the embedding model.
type EmbeddingConfig struct {
	Provider    string `toml:"provider"` // "gemini" or "openai"
	Model       string `toml:"model"`
	Dimension   int    `toml:"dimension"` // 0 keeps the model's native size
	BatchSize   int    `toml:"batch_size"`
	Concurrency int    `toml:"concurrency"`
}

// GenerationConfig selects and tunes the language model.
type GenerationConfig struct {
	Provider       string  `toml:"provider"` // "gemini" or "openai"
	Model          string  `toml:"model"`
	Temperature    float32 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	HistoryTurns   int     `toml:"history_turns"`
}

// RetrievalConfig tunes retrieval and the grounding policy.
type RetrievalConfig struct {
	TopK int `toml:"top_k"`

	// MinSimilarity drops results whose cosine similarity is below it.
	// Zero disables the filter.
	MinSimilarity float64 `toml:"min_similarity"`

	// IrrelevantDistance is the grounding threshold: when every retrieved
	// chunk is farther than this, the question is refused.
	IrrelevantDistance float64 `toml:"irrelevant_distance"`

	// BlockedTopics are refused before retrieval.
	BlockedTopics []string `toml:"blocked_topics"`
}

// StorageConfig locates the index and the conversation history. History
// always lives in the SQLite file; the index moves to PostgreSQL when
// PostgresDSN is set.
type StorageConfig struct {
	Path        string `toml:"path"`
	PostgresDSN string `toml:"postgres_dsn"`
}

// Embedding and generation providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			Seeds: []string{
				"https://spark.apache.org/docs/latest/sql-getting-started.html",
				"https://spark.apache.org/docs/latest/sql-programming-guide.html",
				"https://docs.getdbt.com/reference/references-overview",
				"https://airflow.apache.org/docs/apache-airflow/stable/core-concepts/dags.html",
			},
			MaxDepth:          1,
			MaxPages:          50,
			Concurrency:       4,
			RequestsPerSecond: 2,
			TimeoutSeconds:    10,
		},
		Chunk: ChunkConfig{
			Size:    3000,
			Overlap: 0.1,
		},
		Embedding: EmbeddingConfig{
			Provider:    ProviderGemini,
			Model:       "gemini-embedding-001",
			Dimension:   768,
			BatchSize:   16,
			Concurrency: 2,
		},
		Generation: GenerationConfig{
			Provider:       ProviderGemini,
			Model:          "gemini-2.5-flash",
			Temperature:    0,
			TimeoutSeconds: 120,
		},
		Retrieval: RetrievalConfig{
			TopK:               5,
			IrrelevantDistance: 0.5,
			BlockedTopics: []string{
				"kafka", "snowflake", "mongodb", "redis",
				"elasticsearch", "postgres", "mysql",
			},
		},
	}
}

// Validate returns an error if the configuration is unusable.
func (c *Config) Validate() error {
	if len(c.Crawl.Seeds) == 0 {
		return Errorf(EINVALID, "at least one seed URL required")
	}
	for _, seed := range c.Crawl.Seeds {
		if err := ValidateSeed(seed); err != nil {
			return err
		}
	}
	if c.Crawl.MaxDepth < 0 {
		return Errorf(EINVALID, "max depth must not be negative")
	}
	if c.Crawl.MaxPages <= 0 {
		return Errorf(EINVALID, "max pages must be positive")
	}
	if c.Chunk.Size <= 0 {
		return Errorf(EINVALID, "chunk size must be positive")
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= 1 {
		return Errorf(EINVALID, "chunk overlap must be in [0, 1)")
	}
	if c.Embedding.Dimension < 0 {
		return Errorf(EINVALID, "embedding dimension must not be negative")
	}
	if c.Embedding.BatchSize <= 0 {
		return Errorf(EINVALID, "embedding batch size must be positive")
	}
	if err := validateProvider(c.Embedding.Provider); err != nil {
		return err
	}
	if err := validateProvider(c.Generation.Provider); err != nil {
		return err
	}
	if c.Retrieval.TopK <= 0 {
		return Errorf(EINVALID, "top k must be positive")
	}
	if c.Retrieval.MinSimilarity < 0 || c.Retrieval.MinSimilarity > 1 {
		return Errorf(EINVALID, "min similarity must be in [0, 1]")
	}
	if c.Retrieval.IrrelevantDistance < 0 || c.Retrieval.IrrelevantDistance > 2 {
		return Errorf(EINVALID, "irrelevant distance must be in [0, 2]")
	}
	return nil
}

// ValidateSeed returns EINVALID unless seed is an absolute http(s) URL.
func ValidateSeed(seed string) error {
	u, err := url.Parse(seed)
	if err != nil {
		return Errorf(EINVALID, "invalid seed URL %q: %v", seed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Errorf(EINVALID, "seed URL %q must use http or https", seed)
	}
	if u.Host == "" {
		return Errorf(EINVALID, "seed URL %q has no host", seed)
	}
	return nil
}

func validateProvider(p string) error {
	switch p {
	case ProviderGemini, ProviderOpenAI:
		return nil
	default:
		return Errorf(EINVALID, "unknown provider %q", p)
	}
}

// Fingerprint identifies the content an index was built from: the crawl
// bounds, the chunking parameters and the embedding model. An index whose
// stored fingerprint differs from the current one must be rebuilt.
func Fingerprint(c *Config) string {
	var b strings.Builder
	for _, seed := range c.Crawl.Seeds {
		b.WriteString(seed)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "depth=%d pages=%d\n", c.Crawl.MaxDepth, c.Crawl.MaxPages)
	fmt.Fprintf(&b, "chunk=%d overlap=%g\n", c.Chunk.Size, c.Chunk.Overlap)
	fmt.Fprintf(&b, "embed=%s/%s dim=%d\n", c.Embedding.Provider, c.Embedding.Model, c.Embedding.Dimension)
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}
