package models

import (
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/tsukuyomi/internal/utils"
)

// buildOpenAIParams converts an ADK request to OpenAI chat completion parameters.
func buildOpenAIParams(req *model.LLMRequest, modelName string) *openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: req.Model,
	}
	if req.Model == "" {
		params.Model = modelName
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.Config != nil && req.Config.SystemInstruction != nil {
		if text := utils.ExtractContentText(req.Config.SystemInstruction); text != "" {
			messages = append(messages, openai.SystemMessage(text))
		}
	}
	messages = append(messages, convertContentsToMessages(req.Contents)...)
	if len(messages) > 0 {
		params.Messages = messages
	}

	if req.Config != nil {
		if req.Config.Temperature != nil {
			params.Temperature = openai.Float(float64(*req.Config.Temperature))
		}
		if req.Config.MaxOutputTokens > 0 {
			params.MaxTokens = openai.Int(int64(req.Config.MaxOutputTokens))
		}
		if req.Config.TopP != nil {
			params.TopP = openai.Float(float64(*req.Config.TopP))
		}
		applyResponseFormat(&params, req.Config)
	}

	return &params
}

// applyResponseFormat maps a genai response schema onto the OpenAI json_schema
// response format, or json_object when only the JSON MIME type is requested.
func applyResponseFormat(params *openai.ChatCompletionNewParams, cfg *genai.GenerateContentConfig) {
	if cfg.ResponseSchema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName(cfg.ResponseSchema),
					Schema: toJSONSchema(cfg.ResponseSchema),
				},
			},
		}
		return
	}
	if cfg.ResponseMIMEType == "application/json" {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
}

func schemaName(schema *genai.Schema) string {
	if schema.Title != "" {
		return schema.Title
	}
	return "response"
}

// toJSONSchema converts a genai.Schema (OBJECT/STRING/... types) to JSON Schema.
func toJSONSchema(schema *genai.Schema) *jsonschema.Schema {
	if schema == nil {
		return nil
	}

	out := &jsonschema.Schema{
		Type:        strings.ToLower(string(schema.Type)),
		Description: schema.Description,
		Required:    schema.Required,
	}
	for _, value := range schema.Enum {
		out.Enum = append(out.Enum, value)
	}
	if schema.Items != nil {
		out.Items = toJSONSchema(schema.Items)
	}
	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*jsonschema.Schema, len(schema.Properties))
		for name, prop := range schema.Properties {
			if prop != nil {
				out.Properties[name] = toJSONSchema(prop)
			}
		}
	}
	return out
}

// convertContentsToMessages converts genai.Content to OpenAI messages.
func convertContentsToMessages(contents []*genai.Content) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	for _, content := range contents {
		if content == nil {
			continue
		}
		textContent := utils.ExtractContentText(content)

		switch content.Role {
		case "user":
			messages = append(messages, openai.UserMessage(textContent))
		case "model", "assistant":
			messages = append(messages, openai.AssistantMessage(textContent))
		case "system":
			messages = append(messages, openai.SystemMessage(textContent))
		default:
			messages = append(messages, openai.UserMessage(textContent))
		}
	}

	return messages
}
