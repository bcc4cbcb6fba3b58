package answer_test

import (
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/answer"
	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	t.Run("numbers documents by source", func(t *testing.T) {
		t.Parallel()

		results := []docqa.SearchResult{
			result("https://docs.getdbt.com/models", "Models are SQL files.", 0.1),
			result("https://docs.getdbt.com/tests", "Tests are assertions.", 0.2),
			result("https://docs.getdbt.com/models", "Materializations.", 0.3),
		}

		prompt := answer.BuildPrompt("What is a model?", results, nil)

		assert.Contains(t, prompt, "<index>1</index>\n<title>Docs</title>\n<source>https://docs.getdbt.com/models</source>\n<content>Models are SQL files.</content>")
		assert.Contains(t, prompt, "<index>2</index>\n<title>Docs</title>\n<source>https://docs.getdbt.com/tests</source>")
		assert.Contains(t, prompt, "<index>1</index>\n<title>Docs</title>\n<source>https://docs.getdbt.com/models</source>\n<content>Materializations.</content>")
		assert.NotContains(t, prompt, "<history>")
		assert.Contains(t, prompt, "</documents>\n\nQuestion: What is a model?")
	})

	t.Run("falls back to the URL for untitled chunks and includes headings", func(t *testing.T) {
		t.Parallel()

		r := docqa.SearchResult{Chunk: &docqa.Chunk{SourceURL: "https://a.com/", Heading: "Install", Content: "x"}}

		prompt := answer.BuildPrompt("q", []docqa.SearchResult{r}, nil)

		assert.Contains(t, prompt, "<title>https://a.com/</title>")
		assert.Contains(t, prompt, "<section>Install</section>")
	})

	t.Run("renders history before documents", func(t *testing.T) {
		t.Parallel()

		history := []*docqa.Turn{{Question: "q1", Answer: "a1"}}

		prompt := answer.BuildPrompt("q2", []docqa.SearchResult{result("https://a.com/", "x", 0)}, history)

		assert.Contains(t, prompt, "<history>\n<turn>\n<question>q1</question>\n<answer>a1</answer>\n</turn>\n</history>\n\n<documents>")
	})
}
