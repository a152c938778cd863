package models

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/tsukuyomi/internal/utils"
)

var (
	// ErrNoBackend is returned when no model is configured.
	ErrNoBackend = errors.New("generative backend not configured")
	// ErrEmptyResponse is returned when the model answered without text.
	ErrEmptyResponse = errors.New("empty model response")
)

// GenerateText runs req without streaming and returns the trimmed reply text.
func GenerateText(ctx context.Context, llm model.LLM, req *model.LLMRequest) (string, error) {
	if llm == nil {
		return "", ErrNoBackend
	}

	var sb strings.Builder
	for resp, err := range llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", err
		}
		if resp == nil || resp.Content == nil || resp.Partial {
			continue
		}
		sb.WriteString(utils.ExtractContentText(resp.Content))
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Prompt sends a single user message and returns the reply text.
func Prompt(ctx context.Context, llm model.LLM, prompt string) (string, error) {
	return GenerateText(ctx, llm, &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText(prompt, "user")},
	})
}
