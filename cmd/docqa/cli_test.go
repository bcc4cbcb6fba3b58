package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docqa"
	main "github.com/fwojciec/docqa/cmd/docqa"
	"github.com/fwojciec/docqa/crawl"
	"github.com/fwojciec/docqa/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commands = []string{"crawl", "index", "ask", "search", "history", "status"}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range commands {
		assert.Contains(t, stdout.String(), cmd, "Help should mention %s command", cmd)
	}
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	for _, cmd := range commands {
		assert.Contains(t, stdout.String(), cmd)
	}
	assert.NoFileExists(t, m.DBPath, "help should not create the database")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	err := m.Run(context.Background(), []string{}, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestMain_Run_StatusWithoutIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	config := writeConfig(t, dir, `
[crawl]
seeds = ["https://docs.getdbt.com/reference/references-overview"]
`)

	m := main.NewMain()
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(),
		[]string{"-c", config, "--db", filepath.Join(dir, "docqa.db"), "status"},
		stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "No index")
	assert.FileExists(t, filepath.Join(dir, "docqa.db"))
}

func TestMain_Run_HistoryOnFreshDatabase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	config := writeConfig(t, dir, "")

	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "nested", "docqa.db")
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"-c", config, "history", "-u", "ana"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), `No history for "ana"`)
}

func TestMain_Run_InvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	config := writeConfig(t, dir, `
[chunk]
overlap = 1.5
`)

	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "docqa.db")

	err := m.Run(context.Background(), []string{"-c", config, "status"}, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
	assert.NoFileExists(t, m.DBPath)
}

func TestMain_Run_RejectsInvalidSeedFlag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	config := writeConfig(t, dir, "")

	m := main.NewMain()
	m.DBPath = filepath.Join(dir, "docqa.db")

	err := m.Run(context.Background(), []string{"-c", config, "crawl", "ftp://example.com"}, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newCrawler returns a crawler over a fixed set of pages. URLs missing from
// pages fail to fetch.
func newCrawler(pages map[string]string) *crawl.Crawler {
	return &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				html, ok := pages[url]
				if !ok {
					return "", docqa.Errorf(docqa.EFETCH, "404 %s", url)
				}
				return html, nil
			},
			CloseFn: func() error { return nil },
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html string) (*docqa.ExtractResult, error) {
				return &docqa.ExtractResult{Title: "Docs", ContentHTML: html}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) { return html, nil },
		},
		LinkSelector: &mock.LinkSelector{
			ExtractLinksFn: func(string, string) ([]docqa.DiscoveredLink, error) { return nil, nil },
		},
		MaxDepth:    0,
		MaxPages:    10,
		Concurrency: 1,
		RetryDelays: []time.Duration{},
	}
}

func testConfig(seeds ...string) *docqa.Config {
	cfg := docqa.DefaultConfig()
	cfg.Crawl.Seeds = seeds
	return cfg
}
