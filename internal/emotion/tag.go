package emotion

import (
	"regexp"
	"strings"
)

var (
	tagPattern   = regexp.MustCompile(`(?i)\[emotion:([\p{L}\p{N}_]+)\]`)
	emotionTable = map[string]int{
		"joy":     1,
		"cute":    1,
		"shy":     0,
		"neutral": 0,
		"sad":     -1,
		"angry":   -1,
	}
)

// ExtractTag returns the lowercased name of the last [emotion:<name>] tag in text.
func ExtractTag(text string) (string, bool) {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	return strings.ToLower(matches[len(matches)-1][1]), true
}

// Weight maps an emotion name to its intimacy weight. Unknown names weigh 0.
func Weight(emotion string) int {
	return emotionTable[emotion]
}

// ReplyWeight is Weight applied to the last tag of a reply.
func ReplyWeight(reply string) int {
	name, ok := ExtractTag(reply)
	if !ok {
		return 0
	}
	return Weight(name)
}

// StripTags removes every emotion tag and trims the result.
func StripTags(text string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(text, ""))
}
