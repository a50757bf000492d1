package extract_test

import (
	"strings"
	"testing"

	"github.com/pagesift/pagesift/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML_RemovesNoise(t *testing.T) {
	raw := `<html><head>
<script>var tracking = true;</script>
<style>.hidden { display: none; }</style>
<link rel="stylesheet" href="/main.css">
</head><body>
<h1>Widget</h1>
<noscript>Please enable JavaScript</noscript>
<iframe src="https://ads.example.com"></iframe>
<svg viewBox="0 0 10 10"><path d="M0 0"></path></svg>
<p>In stock</p>
</body></html>`

	cleaned, err := extract.CleanHTML(raw, 0)
	require.NoError(t, err)

	assert.Contains(t, cleaned, "<h1>Widget</h1>")
	assert.Contains(t, cleaned, "In stock")
	assert.NotContains(t, cleaned, "tracking")
	assert.NotContains(t, cleaned, "display: none")
	assert.NotContains(t, cleaned, "main.css")
	assert.NotContains(t, cleaned, "enable JavaScript")
	assert.NotContains(t, cleaned, "iframe")
	assert.NotContains(t, cleaned, "svg")
}

func TestCleanHTML_Truncation(t *testing.T) {
	raw := "<html><body><p>" + strings.Repeat("x", 500) + "</p></body></html>"

	cleaned, err := extract.CleanHTML(raw, 100)
	require.NoError(t, err)
	assert.Len(t, []rune(cleaned), 100)
}

func TestCleanHTML_TruncationIsRuneSafe(t *testing.T) {
	raw := "<html><body><p>" + strings.Repeat("商品", 200) + "</p></body></html>"

	cleaned, err := extract.CleanHTML(raw, 50)
	require.NoError(t, err)
	assert.Len(t, []rune(cleaned), 50)
	assert.NotContains(t, cleaned, "�")
}

func TestCleanHTML_DefaultLimit(t *testing.T) {
	raw := "<html><body><p>" + strings.Repeat("y", extract.DefaultMaxContentChars*2) + "</p></body></html>"

	cleaned, err := extract.CleanHTML(raw, 0)
	require.NoError(t, err)
	assert.Len(t, []rune(cleaned), extract.DefaultMaxContentChars)
}
