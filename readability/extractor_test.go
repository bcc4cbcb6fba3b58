package readability_test

import (
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := readability.NewExtractor().Extract("")

	assert.Equal(t, docqa.EPARSE, docqa.ErrorCode(err))
}

func TestExtractor_ExtractsTitle(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Airflow Concepts</title></head>
<body><article><p>A DAG is a collection of all the tasks you want to run.</p></article></body>
</html>`

	result, err := readability.NewExtractor().Extract(html)

	require.NoError(t, err)
	assert.Equal(t, "Airflow Concepts", result.Title)
}

func TestExtractor_RemovesNavigation(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav><a href="/home">Home Nav Link</a><a href="/about">About Nav Link</a></nav>
<article><p>dbt models are SQL select statements that live in the models directory of a project.</p></article>
</body>
</html>`

	result, err := readability.NewExtractor().Extract(html)

	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "SQL select statements")
	assert.NotContains(t, result.ContentHTML, "Home Nav Link")
}

func TestExtractor_PreservesStructure(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Operators</title></head>
<body>
<article>
<h2>BashOperator</h2>
<p>Use the BashOperator to execute commands in a Bash shell. It is one of the most common operators.</p>
<ul><li>bash_command</li><li>env</li></ul>
<pre><code class="language-python">run = BashOperator(task_id="run", bash_command="echo 1")</code></pre>
<table><tr><th>Param</th><th>Type</th></tr><tr><td>cwd</td><td>str</td></tr></table>
</article>
</body>
</html>`

	result, err := readability.NewExtractor().Extract(html)

	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "BashOperator")
	assert.Contains(t, result.ContentHTML, "<li>")
	assert.Contains(t, result.ContentHTML, "<pre>")
	assert.Contains(t, result.ContentHTML, "<table>")
}
