package emotion

import (
	"regexp"
	"strings"
)

var (
	positiveKeywords = []string{
		"謝謝",
		"喜歡你",
		"愛你",
		"太棒",
		"好棒",
		"可愛",
		"真貼心",
		"抱抱",
		"想你",
	}
	negativeKeywords = []string{
		"不喜歡你",
		"討厭你",
		"爛",
		"閉嘴",
		"走開",
		"煩",
		"生氣",
		"滾",
	}
	// neutral acknowledgements only count when they end the message.
	neutralPattern = regexp.MustCompile(`(?i)(嗯|哦|好|OK|好的)[!！。.\s]*$`)
)

// Sentiment is the keyword class a message falls into.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNone     Sentiment = ""
)

// ClassifyKeywords checks positive, negative, then neutral; first match wins.
// "不喜歡你" is therefore positive through "喜歡你".
func ClassifyKeywords(text string) Sentiment {
	switch {
	case containsAny(text, positiveKeywords):
		return SentimentPositive
	case containsAny(text, negativeKeywords):
		return SentimentNegative
	case neutralPattern.MatchString(text):
		return SentimentNeutral
	default:
		return SentimentNone
	}
}

// KeywordDelta is the keyword fallback: +1 positive, -1 negative, 0 otherwise.
func KeywordDelta(text string) int {
	switch ClassifyKeywords(text) {
	case SentimentPositive:
		return 1
	case SentimentNegative:
		return -1
	default:
		return 0
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
