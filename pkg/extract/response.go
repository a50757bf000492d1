package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseItems shapes a model's free-text reply into a list of records. Models
// asked for bare JSON still frequently wrap it in a markdown fence or return
// a single object instead of an array; both are accepted. Anything that does
// not decode to an object or an array of objects is an error.
func ParseItems(response string) ([]map[string]any, error) {
	cleaned := strings.TrimSpace(response)
	if cleaned == "" {
		return nil, fmt.Errorf("model returned an empty response")
	}

	jsonContent := stripFence(cleaned)

	var parsed any
	if err := json.Unmarshal([]byte(jsonContent), &parsed); err != nil {
		return nil, fmt.Errorf("parsing model response as JSON: %w", err)
	}

	switch v := parsed.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		items := make([]map[string]any, 0, len(v))
		for i, entry := range v {
			obj, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("response array entry %d is not an object (got %T)", i, entry)
			}
			items = append(items, obj)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unexpected response shape: %T", parsed)
	}
}

// stripFence extracts the body of the first ```json or plain ``` fence, when
// one is present. Trailing prose after the closing fence is discarded.
func stripFence(s string) string {
	if idx := strings.Index(s, "```json"); idx >= 0 {
		rest := s[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+len("```"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	return s
}
