package memory

import (
	"context"
	"regexp"
	"strings"
)

// word matches what a Unicode-aware \w would.
const word = `([\p{L}\p{N}_]+)`

var (
	namePattern    = regexp.MustCompile(`(?:我叫|我的名字是)` + word)
	likePattern    = regexp.MustCompile(`我喜歡` + word)
	dislikePattern = regexp.MustCompile(`我討厭` + word)
	agePattern     = regexp.MustCompile(`我.*?(\p{Nd}{1,3})\s*歲`)
	homePattern    = regexp.MustCompile(`我住在` + word)
	opinionPattern = regexp.MustCompile(`我覺得` + word)

	occupations = []string{"老師", "學生", "工程師", "設計師"}
	moods       = []string{"開心", "難過", "累", "生氣", "放鬆"}
)

// capture renders prefix + first group + suffix.
type capture struct {
	pattern *regexp.Regexp
	prefix  string
	suffix  string
}

var captures = []capture{
	{pattern: namePattern, prefix: "他的名字是"},
	{pattern: likePattern, prefix: "他喜歡"},
	{pattern: dislikePattern, prefix: "他討厭"},
	{pattern: agePattern, prefix: "他", suffix: "歲"},
	{pattern: homePattern, prefix: "他住在"},
}

// PatternExtractor pulls facts out of a message with fixed phrase patterns.
// It never fails and needs no backend.
type PatternExtractor struct{}

func (PatternExtractor) Extract(_ context.Context, message string) ([]string, error) {
	return ExtractPatternFacts(message), nil
}

// ExtractPatternFacts returns facts in a fixed order: name, likes, dislikes,
// age, residence, occupations, opinion, then today's moods.
func ExtractPatternFacts(message string) []string {
	var facts []string

	for _, c := range captures {
		m := c.pattern.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		facts = append(facts, c.prefix+m[1]+c.suffix)
	}

	if strings.Contains(message, "我是") {
		for _, job := range occupations {
			if strings.Contains(message, job) {
				facts = append(facts, "他是"+job)
			}
		}
	}

	if m := opinionPattern.FindStringSubmatch(message); m != nil {
		facts = append(facts, "他覺得"+m[1])
	}

	if strings.Contains(message, "我今天") {
		for _, mood := range moods {
			if strings.Contains(message, mood) {
				facts = append(facts, "他今天"+mood)
			}
		}
	}

	return facts
}
