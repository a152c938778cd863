package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/tsukuyomi/internal/models"
	"github.com/easeaico/tsukuyomi/internal/utils"
)

// Extractor turns one user message into candidate facts.
type Extractor interface {
	Extract(ctx context.Context, message string) ([]string, error)
}

// factPromptText 要求模型只回傳 summary 與 facts。
const factPromptText = `你是一個會從使用者對話中提取記憶的助手。請從以下訊息中提取出「摘要」與「記憶事實」。
只回傳 JSON 結構如下：
{
  "summary": "...",
  "facts": ["...", "..."]
}
訊息內容：
「{{.}}」
`

var factPrompt = template.Must(template.New("facts").Parse(factPromptText))

// ModelExtractor asks a generative model for structured facts.
type ModelExtractor struct {
	model model.LLM
}

func NewModelExtractor(m model.LLM) *ModelExtractor {
	return &ModelExtractor{model: m}
}

// Extract returns the facts array of the model's JSON answer. Entries that
// are not strings are skipped; a missing or null array yields no facts.
func (e *ModelExtractor) Extract(ctx context.Context, message string) ([]string, error) {
	var buf bytes.Buffer
	if err := factPrompt.Execute(&buf, message); err != nil {
		return nil, fmt.Errorf("failed to render fact prompt: %w", err)
	}

	raw, err := models.GenerateText(ctx, e.model, &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText(buf.String(), "user")},
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   factOutputSchema(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query fact extractor: %w", err)
	}

	var out struct {
		Facts []json.RawMessage `json:"facts"`
	}
	if err := utils.DecodeJSONObject(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse extracted facts: %w", err)
	}

	facts := make([]string, 0, len(out.Facts))
	for _, item := range out.Facts {
		var fact string
		if err := json.Unmarshal(item, &fact); err != nil {
			continue
		}
		if fact = strings.TrimSpace(fact); fact != "" {
			facts = append(facts, fact)
		}
	}
	return facts, nil
}

func factOutputSchema() *genai.Schema {
	return &genai.Schema{
		Title: "memory_facts",
		Type:  genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString},
			"facts": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"facts"},
	}
}
