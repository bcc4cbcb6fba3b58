package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/docqa"
)

// snippetLen is the number of characters of chunk content shown per result.
const snippetLen = 120

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	k := c.K
	if k <= 0 {
		k = deps.Config.Retrieval.TopK
	}

	results, err := deps.Retriever.Retrieve(deps.Ctx, c.Query, k)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results. Run 'docqa index' to build the index.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(deps.Stdout, "%d. [%.4f] %s", i+1, r.Distance, r.Chunk.SourceURL)
		if r.Chunk.Heading != "" {
			fmt.Fprintf(deps.Stdout, " (%s)", r.Chunk.Heading)
		}
		fmt.Fprintf(deps.Stdout, "\n   %s\n", snippet(r.Chunk.Content))
	}
	return nil
}

func snippet(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if r := []rune(s); len(r) > snippetLen {
		return string(r[:snippetLen]) + "..."
	}
	return s
}
