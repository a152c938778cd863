package tts

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"google.golang.org/adk/model"

	"github.com/easeaico/tsukuyomi/internal/models"
)

// DefaultStyle is the tone kept when translating persona replies.
const DefaultStyle = "可愛、撒嬌語氣"

const translatePromptText = `
請將以下中文翻譯成日文，並保持角色語氣：{{.Style}}。
中文：
「{{.Text}}」
請只輸出日文翻譯，不要加入任何解釋
`

var translatePrompt = template.Must(template.New("translate").Parse(translatePromptText))

// Translator renders Chinese replies in Japanese for the Japanese voice.
type Translator struct {
	model model.LLM
	style string
}

func NewTranslator(m model.LLM, style string) *Translator {
	if style == "" {
		style = DefaultStyle
	}
	return &Translator{model: m, style: style}
}

// Translate returns the trimmed Japanese text. Blank input yields "".
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := translatePrompt.Execute(&buf, struct{ Style, Text string }{t.style, text}); err != nil {
		return "", fmt.Errorf("failed to render translation prompt: %w", err)
	}
	out, err := models.Prompt(ctx, t.model, buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to translate: %w", err)
	}
	return out, nil
}
