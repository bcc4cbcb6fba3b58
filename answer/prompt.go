package answer

import (
	"fmt"
	"strings"

	"github.com/fwojciec/docqa"
)

// SystemInstruction restricts the model to the supplied documents.
const SystemInstruction = `You are a documentation assistant. Answer the question using ONLY the documents provided in the prompt.
Rules:
- Do not use general knowledge or information that is not in the documents.
- If the documents do not contain the answer, reply exactly: "` + RefusalMessage + `"
- Cite the documents you used with their index in square brackets, for example [1].
- Keep code, configuration keys and command names exactly as they appear in the documents.`

// BuildPrompt renders the retrieved passages, recent history and the
// question. Passages from the same page share the index of that page in
// docqa.UniqueSources, so citations line up with the returned sources.
func BuildPrompt(question string, results []docqa.SearchResult, history []*docqa.Turn) string {
	sources := docqa.UniqueSources(results)
	index := make(map[string]int, len(sources))
	for i, src := range sources {
		index[src] = i + 1
	}

	var sb strings.Builder
	if len(history) > 0 {
		sb.WriteString("<history>\n")
		for _, t := range history {
			sb.WriteString("<turn>\n")
			fmt.Fprintf(&sb, "<question>%s</question>\n", t.Question)
			fmt.Fprintf(&sb, "<answer>%s</answer>\n", t.Answer)
			sb.WriteString("</turn>\n")
		}
		sb.WriteString("</history>\n\n")
	}

	sb.WriteString("<documents>\n")
	for _, r := range results {
		c := r.Chunk
		title := c.Title
		if title == "" {
			title = c.SourceURL
		}
		sb.WriteString("<document>\n")
		fmt.Fprintf(&sb, "<index>%d</index>\n", index[c.SourceURL])
		fmt.Fprintf(&sb, "<title>%s</title>\n", title)
		if c.Heading != "" {
			fmt.Fprintf(&sb, "<section>%s</section>\n", c.Heading)
		}
		fmt.Fprintf(&sb, "<source>%s</source>\n", c.SourceURL)
		fmt.Fprintf(&sb, "<content>%s</content>\n", c.Content)
		sb.WriteString("</document>\n")
	}
	sb.WriteString("</documents>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}
