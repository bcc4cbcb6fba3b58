package main

import (
	"fmt"

	"github.com/fwojciec/docqa"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if c.Clear {
		n, err := deps.Conversations.ClearTurns(deps.Ctx, c.User)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Cleared %d turn(s) for %q\n", n, c.User)
		return nil
	}

	turns, err := deps.Conversations.FindTurns(deps.Ctx, docqa.TurnFilter{UserID: &c.User, Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if len(turns) == 0 {
		fmt.Fprintf(deps.Stdout, "No history for %q.\n", c.User)
		return nil
	}

	for i, turn := range turns {
		if i > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		fmt.Fprintf(deps.Stdout, "[%s] Q: %s\n", turn.CreatedAt.Local().Format("2006-01-02 15:04"), turn.Question)
		if turn.Refused {
			fmt.Fprintf(deps.Stdout, "A (refused): %s\n", turn.Answer)
			continue
		}
		fmt.Fprintf(deps.Stdout, "A: %s\n", turn.Answer)
		if len(turn.Sources) > 0 {
			fmt.Fprint(deps.Stdout, docqa.FormatSources(turn.Sources))
		}
	}
	return nil
}
