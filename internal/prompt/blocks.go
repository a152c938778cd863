// Package prompt assembles the persona system prompt and chat requests.
package prompt

import (
	"fmt"
	"strings"

	"github.com/easeaico/tsukuyomi/internal/emotion"
)

// IntimacyBlock states the current score, its tier and the tone to use.
func IntimacyBlock(intimacy int) string {
	tier := emotion.TierFor(intimacy)
	return fmt.Sprintf("\n[親密度：%d(%s)]\n%s\n", intimacy, tier.Label, tier.Directive)
}

// MemoryBlock lists remembered facts; it is empty when there are none.
func MemoryBlock(facts []string) string {
	if len(facts) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("這是你記住使用者的資訊：\n")
	for _, fact := range facts {
		sb.WriteString("- ")
		sb.WriteString(fact)
		sb.WriteString("\n")
	}
	sb.WriteString("請自然地融入對話中，但不要主動說出你記得這些事喔。\n")
	return sb.String()
}

// SystemPrompt is persona + intimacy block + memory block.
func SystemPrompt(persona string, intimacy int, facts []string) string {
	return persona + IntimacyBlock(intimacy) + MemoryBlock(facts)
}
