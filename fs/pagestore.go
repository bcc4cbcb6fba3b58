// Package fs saves crawled pages as Markdown files with YAML frontmatter.
package fs

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/docqa"
	"gopkg.in/yaml.v3"
)

// Ensure FileStore implements docqa.PageStore at compile time.
var _ docqa.PageStore = (*FileStore)(nil)

// Frontmatter is the metadata block written at the top of each saved page.
type Frontmatter struct {
	Source  string `yaml:"source"`
	Title   string `yaml:"title,omitempty"`
	Depth   int    `yaml:"depth"`
	Crawled string `yaml:"crawled"`
}

// FileStore implements docqa.PageStore with atomic update semantics.
// Pages are saved to a temporary directory, then moved atomically on Commit.
type FileStore struct {
	baseDir string
	name    string
}

// NewFileStore creates a new FileStore.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{baseDir: baseDir, name: name}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes page under its host and URL path in the temporary directory.
func (s *FileStore) Save(ctx context.Context, page *docqa.Page) error {
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}
	data, err := FormatPage(page)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0o644)
}

// Commit replaces the final directory with the saved pages.
func (s *FileStore) Commit() error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards the saved pages.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// FormatPage renders page as YAML frontmatter followed by its Markdown.
func FormatPage(page *docqa.Page) ([]byte, error) {
	crawled := page.FetchedAt
	if crawled.IsZero() {
		crawled = time.Now()
	}
	meta, err := yaml.Marshal(Frontmatter{
		Source:  page.URL,
		Title:   page.Title,
		Depth:   page.Depth,
		Crawled: crawled.UTC().Format(time.DateOnly),
	})
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString(page.Content)
	return b.Bytes(), nil
}

// ParsePage reads a file written by FormatPage back into a page.
func ParsePage(data []byte) (*docqa.Page, error) {
	rest, ok := bytes.CutPrefix(data, []byte("---\n"))
	if !ok {
		return nil, docqa.Errorf(docqa.EPARSE, "missing frontmatter")
	}
	meta, body, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return nil, docqa.Errorf(docqa.EPARSE, "unterminated frontmatter")
	}

	var fm Frontmatter
	if err := yaml.Unmarshal(meta, &fm); err != nil {
		return nil, docqa.Errorf(docqa.EPARSE, "invalid frontmatter: %v", err)
	}
	page := &docqa.Page{
		URL:     fm.Source,
		Title:   fm.Title,
		Depth:   fm.Depth,
		Content: strings.TrimPrefix(string(body), "\n"),
	}
	if fm.Crawled != "" {
		t, err := time.Parse(time.DateOnly, fm.Crawled)
		if err != nil {
			return nil, docqa.Errorf(docqa.EPARSE, "invalid crawl date %q", fm.Crawled)
		}
		page.FetchedAt = t
	}
	return page, nil
}

// URLToPath converts a page URL to a relative slash-separated file path
// rooted at the host, so pages from several sites do not collide.
// Example: https://docs.getdbt.com/docs/build/models → docs.getdbt.com/docs/build/models.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", docqa.Errorf(docqa.EINVALID, "invalid page URL %q", rawURL)
	}
	if u.Host == "" {
		return "", docqa.Errorf(docqa.EINVALID, "page URL %q has no host", rawURL)
	}
	host := strings.ReplaceAll(strings.ToLower(u.Host), ":", "_")

	p := u.Path
	switch {
	case p == "" || p == "/":
		p = "index.md"
	case strings.HasSuffix(p, "/"):
		p += "index.md"
	default:
		p = strings.TrimSuffix(p, ".html")
		p = strings.TrimSuffix(p, ".htm")
		p += ".md"
	}
	p = strings.TrimPrefix(p, "/")

	rel := path.Join(host, p)
	if !filepath.IsLocal(filepath.FromSlash(rel)) || !strings.HasPrefix(rel, host+"/") {
		return "", docqa.Errorf(docqa.EINVALID, "path traversal in %q", rawURL)
	}
	return rel, nil
}
