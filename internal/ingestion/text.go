package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	innerSpace  = regexp.MustCompile(`\s+`)
	blankLineRe = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes extracted text (Word bodies, PDF text layers, job pages)
// while preserving headings, bullets and indentation. Pasted CV text is never
// passed through here.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = blankLineRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		if indent > 0 {
			return strings.Repeat(" ", indent) + trimmed
		}
		return trimmed
	}

	content := innerSpace.ReplaceAllString(strings.TrimSpace(line), " ")
	if indent > 0 {
		return strings.Repeat(" ", indent) + content
	}
	return content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "• ") || strings.HasPrefix(line, "· ")
}

// JobDescriptionFromFile reads and cleans a job description text file.
func JobDescriptionFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	cleaned := CleanText(string(content))
	return cleaned, NewMetadata(cleaned, ""), nil
}
