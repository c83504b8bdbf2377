// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock removes markdown code block wrappers and conversational
// preamble from JSON responses. Models sometimes wrap JSON in ```json fences
// even when a JSON MIME type was requested.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Drop preamble before the first object or array
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		if idx := strings.IndexAny(text, "{["); idx > 0 {
			text = text[idx:]
		}
	}

	return text
}
