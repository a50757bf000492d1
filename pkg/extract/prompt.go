package extract

import (
	"fmt"
	"sort"
	"strings"
)

const defaultPreamble = `You are a web scraping assistant. Extract the following information from the HTML content:`

const outputInstruction = `Return the results as a JSON array of objects, where each object contains the requested fields.
Only include the JSON in your response, no other text.`

// BuildPrompt assembles the extraction prompt sent to the LLM. A non-empty
// customPrompt replaces the default preamble. Element lines are rendered in
// sorted field order so the same job always produces the same prompt.
func BuildPrompt(content string, elements map[string]string, customPrompt string) string {
	var b strings.Builder

	if customPrompt != "" {
		b.WriteString(customPrompt)
	} else {
		b.WriteString(defaultPreamble)
	}
	b.WriteString("\n\n")

	fields := make([]string, 0, len(elements))
	for field := range elements {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(&b, "- %s: %s\n", field, elements[field])
	}

	b.WriteString("\n")
	b.WriteString(outputInstruction)
	b.WriteString("\n\nHTML Content:\n")
	b.WriteString(content)

	return b.String()
}
