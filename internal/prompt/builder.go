package prompt

import (
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/tsukuyomi/internal/types"
)

// BuildContext contains all inputs for one chat request.
type BuildContext struct {
	Intimacy    int
	Facts       []string
	History     []types.ChatTurn
	UserMessage string
}

// Builder assembles chat requests for the persona.
type Builder struct {
	persona      string
	historyLimit int
}

// NewBuilder creates a Builder. An empty persona selects DefaultPersona;
// historyLimit is the number of past turns replayed and may be zero.
func NewBuilder(persona string, historyLimit int) *Builder {
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
	}
	if historyLimit < 0 {
		historyLimit = 0
	}
	return &Builder{
		persona:      persona,
		historyLimit: historyLimit,
	}
}

// Build returns the system prompt as SystemInstruction, then the most recent
// history turns as user/model pairs, then the new user message.
func (b *Builder) Build(in BuildContext) (*model.LLMRequest, error) {
	if strings.TrimSpace(in.UserMessage) == "" {
		return nil, fmt.Errorf("user message is required")
	}

	history := in.History
	if len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}

	contents := make([]*genai.Content, 0, len(history)*2+1)
	for _, turn := range history {
		contents = append(contents,
			genai.NewContentFromText(turn.User, "user"),
			genai.NewContentFromText(turn.Bot, "model"),
		)
	}
	contents = append(contents, genai.NewContentFromText(in.UserMessage, "user"))

	system := SystemPrompt(b.persona, in.Intimacy, in.Facts)
	return &model.LLMRequest{
		Contents: contents,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, "system"),
		},
	}, nil
}
