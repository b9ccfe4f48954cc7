package fileparse

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxContentPerFile is the ceiling, in characters, applied to each file
// when the extracted text is formatted for a prompt.
const maxContentPerFile = 15000

const truncationMarker = "\n...[content too long, truncated]"

// FormatForPrompt renders parsed files as one prompt block, applying the
// per-file ceiling with an explicit truncation marker.
func FormatForPrompt(results []Result) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, r := range results {
		content := r.Content
		if content == "" {
			content = "[empty extraction]"
		}
		if utf8.RuneCountInString(content) > maxContentPerFile {
			runes := []rune(content)
			content = string(runes[:maxContentPerFile]) + truncationMarker
		}
		parts = append(parts, fmt.Sprintf("=== File %d: %s ===\n%s", i+1, r.Name, content))
	}

	return "The user uploaded the following files; base your analysis on their content:\n\n" +
		strings.Join(parts, "\n\n") +
		"\n\n---\n\nAnswer the user's question using the file content above:\n\n"
}
