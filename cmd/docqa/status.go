package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	meta, err := deps.Indexer.Load(deps.Ctx)
	if docqa.ErrorCode(err) == docqa.ENOTFOUND {
		fmt.Fprintln(deps.Stdout, "No index. Run 'docqa index' to build it.")
		return nil
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	state := "current"
	if meta.Fingerprint != deps.Fingerprint {
		state = "stale, run 'docqa index' to rebuild"
	}

	fmt.Fprintf(deps.Stdout, "Fingerprint:  %s (%s)\n", meta.Fingerprint, state)
	fmt.Fprintf(deps.Stdout, "Model:        %s\n", meta.Model)
	fmt.Fprintf(deps.Stdout, "Dimension:    %d\n", meta.Dimension)
	fmt.Fprintf(deps.Stdout, "Chunks:       %d\n", meta.ChunkCount)
	fmt.Fprintf(deps.Stdout, "Built:        %s\n", meta.BuiltAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}
