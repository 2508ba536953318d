package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/osama-shakil/ppcode/internal/infra/ai/prompt"
)

const maxTokens = 2048

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// PropertySections asks the model for the narrative sections of a property
// report, in JSON mode, and decodes them against the prompt schema.
func (c *Client) PropertySections(ctx context.Context, address, propertyType, city, county, state string) (prompt.Sections, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(address, propertyType, city, county, state)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return prompt.Sections{}, fmt.Errorf("failed to create chat completion: %w", err)
	}

	var sections prompt.Sections
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &sections); err != nil {
		return prompt.Sections{}, fmt.Errorf("decode narrative sections: %w", err)
	}
	return sections, nil
}
