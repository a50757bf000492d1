package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxContentChars bounds the page content handed to the LLM. Rendered
// pages routinely exceed model context windows; the interesting content is
// almost always in the first portion of the document.
const DefaultMaxContentChars = 120000

// CleanHTML strips the markup the LLM cannot use (scripts, styles, embedded
// frames and vector data) and truncates the result to maxChars runes.
// maxChars <= 0 applies DefaultMaxContentChars.
func CleanHTML(rawHTML string, maxChars int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parsing page HTML: %w", err)
	}

	doc.Find("script, style, noscript, iframe, svg, link[rel='stylesheet']").Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serializing cleaned HTML: %w", err)
	}

	if maxChars <= 0 {
		maxChars = DefaultMaxContentChars
	}

	runes := []rune(cleaned)
	if len(runes) > maxChars {
		cleaned = string(runes[:maxChars])
	}

	return cleaned, nil
}
