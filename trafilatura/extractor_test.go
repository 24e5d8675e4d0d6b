package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/pagelens"
	"github.com/fwojciec/pagelens/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head>
<title>Quarterly Report - Example News</title>
<meta property="og:title" content="Quarterly Report">
</head>
<body>
<nav><a href="/">Home</a><a href="/news">News</a></nav>
<article>
<h1>Quarterly Report</h1>
<p>The company reported strong growth in the third quarter, driven by new products and expanding markets across several regions.</p>
<p>Analysts expect the trend to continue next year as demand for the <a href="/products/widget">flagship widget</a> keeps rising steadily.</p>
</article>
<footer>Copyright 2024 Example News</footer>
</body>
</html>`

func TestContentExtractor_ExtractContent(t *testing.T) {
	t.Parallel()

	t.Run("extracts title from metadata", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewContentExtractor().ExtractContent(articlePage, "https://news.example.com/report")

		require.NoError(t, err)
		assert.Contains(t, result.Title, "Quarterly Report")
	})

	t.Run("keeps article body and drops boilerplate", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewContentExtractor().ExtractContent(articlePage, "")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "strong growth in the third quarter")
		assert.NotContains(t, result.ContentHTML, "Copyright 2024")
	})

	t.Run("rejects empty markup as parse error", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewContentExtractor().ExtractContent("  \n", "https://example.com")

		require.Error(t, err)
		assert.Equal(t, pagelens.EPARSE, pagelens.ErrorCode(err))
	})
}
