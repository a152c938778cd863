package models

import (
	"testing"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func TestBuildOpenAIParamsMessages(t *testing.T) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText("persona", "system"),
			genai.NewContentFromText("你好", "user"),
			genai.NewContentFromText("主人好～", "model"),
			genai.NewContentFromText("今天好累", "user"),
		},
	}

	params := buildOpenAIParams(req, "gemma3")
	if params.Model != "gemma3" {
		t.Fatalf("expected default model, got %q", params.Model)
	}
	if len(params.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil {
		t.Fatalf("expected first message to be a system message")
	}
	if params.Messages[2].OfAssistant == nil {
		t.Fatalf("expected model content to map to an assistant message")
	}
}

func TestBuildOpenAIParamsSystemInstruction(t *testing.T) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText("hi", "user")},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("be cute", "system"),
		},
	}

	params := buildOpenAIParams(req, "gemma3")
	if len(params.Messages) != 2 || params.Messages[0].OfSystem == nil {
		t.Fatalf("expected system instruction to lead the messages, got %d messages", len(params.Messages))
	}
}

func TestBuildOpenAIParamsResponseSchema(t *testing.T) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText("hi", "user")},
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema: &genai.Schema{
				Title: "facts",
				Type:  genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"facts": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				},
			},
		},
	}

	params := buildOpenAIParams(req, "gemma3")
	format := params.ResponseFormat.OfJSONSchema
	if format == nil {
		t.Fatalf("expected json_schema response format")
	}
	if format.JSONSchema.Name != "facts" {
		t.Fatalf("unexpected schema name: %q", format.JSONSchema.Name)
	}
}

func TestBuildOpenAIParamsJSONObject(t *testing.T) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText("hi", "user")},
		Config:   &genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	}

	params := buildOpenAIParams(req, "gemma3")
	if params.ResponseFormat.OfJSONObject == nil {
		t.Fatalf("expected json_object response format")
	}
}

func TestToJSONSchema(t *testing.T) {
	schema := toJSONSchema(&genai.Schema{
		Type:     genai.TypeObject,
		Required: []string{"facts"},
		Properties: map[string]*genai.Schema{
			"facts":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"summary": {Type: genai.TypeString},
		},
	})

	if schema.Type != "object" {
		t.Fatalf("expected lowercased type, got %q", schema.Type)
	}
	facts := schema.Properties["facts"]
	if facts == nil || facts.Type != "array" || facts.Items == nil || facts.Items.Type != "string" {
		t.Fatalf("unexpected facts schema: %+v", facts)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "facts" {
		t.Fatalf("unexpected required: %v", schema.Required)
	}
}

func TestToJSONSchemaNil(t *testing.T) {
	if toJSONSchema(nil) != nil {
		t.Fatalf("expected nil schema")
	}
}
