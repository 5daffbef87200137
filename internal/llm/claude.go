package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeClient implements the Client interface using Anthropic's Claude API.
type ClaudeClient struct {
	client     *anthropic.Client
	model      anthropic.Model
	defaultMax int
}

// ClaudeConfig contains configuration for the Claude client.
type ClaudeConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// ClaudeHaiku35 is the default Claude model.
const ClaudeHaiku35 = string(anthropic.ModelClaude3_5HaikuLatest)

// NewClaudeClient creates a new Claude client.
func NewClaudeClient(cfg ClaudeConfig) (*ClaudeClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = anthropic.Model(ClaudeHaiku35)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &ClaudeClient{
		client:     &client,
		model:      model,
		defaultMax: maxTokens,
	}, nil
}

// Chat sends a chat completion request and returns the response.
func (c *ClaudeClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	messages, systemPrompt := toAnthropicMessages(req.Messages)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.defaultMax
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &ChatResponse{
		Content:      content,
		FinishReason: string(resp.StopReason),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// toAnthropicMessages splits out the system prompt; Claude takes it as a
// request parameter rather than a message.
func toAnthropicMessages(msgs []Message) ([]anthropic.MessageParam, string) {
	messages := make([]anthropic.MessageParam, 0, len(msgs))
	var systemPrompt string

	for _, msg := range msgs {
		switch msg.Role {
		case RoleSystem:
			systemPrompt = msg.Content
		case RoleUser:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}
	return messages, systemPrompt
}

// Close releases any resources held by the client.
func (c *ClaudeClient) Close() error {
	// Anthropic client doesn't have explicit cleanup
	return nil
}
