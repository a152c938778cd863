package utils

import (
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"
)

// ExtractContentText concatenates all text parts of a content.
func ExtractContentText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// RuneLen counts characters, not bytes, after trimming surrounding space.
func RuneLen(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}
