package models

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

const (
	ProviderOllama     = "ollama"
	ProviderOpenAI     = "openai"
	ProviderGrok       = "grok"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"

	defaultOllamaBaseURL     = "http://localhost:11434/v1"
	defaultGrokBaseURL       = "https://api.x.ai/v1"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// Options selects and configures a generative backend.
type Options struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// New returns the model.LLM for opts.Provider.
func New(ctx context.Context, opts Options) (model.LLM, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case ProviderOllama, "":
		return NewOllamaModel(opts.Model, opts.BaseURL)
	case ProviderOpenAI:
		return NewOpenAIModel(opts.Model, opts.BaseURL, opts.APIKey)
	case ProviderGrok:
		return NewGrokModel(opts.Model, opts.APIKey)
	case ProviderOpenRouter:
		return NewOpenRouterModel(opts.Model, opts.APIKey)
	case ProviderGemini:
		return NewGeminiModel(ctx, opts.Model, opts.APIKey)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}
}

// NewOllamaModel talks to a local Ollama server through its OpenAI-compatible API.
func NewOllamaModel(modelName, baseURL string) (model.LLM, error) {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	// Ollama ignores the key but the client requires one.
	return newOpenAICompatible(ProviderOllama, modelName, baseURL, "ollama")
}

func NewOpenAIModel(modelName, baseURL, apiKey string) (model.LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	return newOpenAICompatible(ProviderOpenAI, modelName, baseURL, apiKey)
}

// NewGrokModel creates a Grok model instance on the x.ai OpenAI-compatible endpoint.
func NewGrokModel(modelName, apiKey string) (model.LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	return newOpenAICompatible(ProviderGrok, modelName, defaultGrokBaseURL, apiKey)
}

func NewOpenRouterModel(modelName, apiKey string) (model.LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	return newOpenAICompatible(ProviderOpenRouter, modelName, defaultOpenRouterBaseURL, apiKey)
}

// NewGeminiModel uses ADK's Gemini wrapper.
func NewGeminiModel(ctx context.Context, modelName, apiKey string) (model.LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google api key is required")
	}
	llm, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini model: %w", err)
	}
	return llm, nil
}
