package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/docqa"
	main "github.com/fwojciec/docqa/cmd/docqa"
	"github.com/fwojciec/docqa/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the answer and its sources", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, userID, question string) (*docqa.Answer, error) {
				assert.Equal(t, "ana", userID)
				assert.Equal(t, "What is a DAG?", question)
				return &docqa.Answer{
					Text:    "A DAG is a collection of tasks [1].",
					State:   docqa.StateGrounded,
					Sources: []string{"https://airflow.apache.org/docs/dags.html"},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Asker:  asker,
		}

		err := (&main.AskCmd{Question: "What is a DAG?", User: "ana"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t,
			"A DAG is a collection of tasks [1].\n\nSources:\n[1] https://airflow.apache.org/docs/dags.html\n",
			stdout.String())
	})

	t.Run("prints refusals without sources", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(context.Context, string, string) (*docqa.Answer, error) {
				return &docqa.Answer{Text: "I can only answer from the documentation.", State: docqa.StateRefusal}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Asker:  asker,
		}

		err := (&main.AskCmd{Question: "Who won the match?", User: "default"}).Run(deps)

		require.NoError(t, err)
		assert.NotContains(t, stdout.String(), "Sources:")
	})

	t.Run("prints errors to stderr", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(context.Context, string, string) (*docqa.Answer, error) {
				return nil, docqa.Errorf(docqa.EUNAVAILABLE, "model timed out")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Asker:  asker,
		}

		err := (&main.AskCmd{Question: "What is dbt?", User: "default"}).Run(deps)

		assert.Equal(t, docqa.EUNAVAILABLE, docqa.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: model timed out")
	})
}
