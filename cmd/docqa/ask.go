package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	answer, err := deps.Asker.Ask(deps.Ctx, c.User, c.Question)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Fprintf(deps.Stdout, "\nSources:\n%s", docqa.FormatSources(answer.Sources))
	}
	return nil
}
