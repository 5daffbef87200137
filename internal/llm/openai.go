package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements the Client interface using OpenAI's API.
// It also serves OpenAI-compatible endpoints such as Groq and Ollama.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	defaultMax int
}

// OpenAIConfig contains configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int

	// BaseURL overrides the API endpoint for compatible servers.
	BaseURL string
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	return newOpenAICompatible(cfg, openai.GPT4oMini), nil
}

func newOpenAICompatible(cfg OpenAIConfig, defaultModel string) *OpenAIClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		defaultMax: maxTokens,
	}
}

// Chat sends a chat completion request and returns the response.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.defaultMax
	}

	temperature := req.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	return &ChatResponse{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Model returns the model name requests are sent to.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Close releases any resources held by the client.
func (c *OpenAIClient) Close() error {
	// OpenAI client doesn't have explicit cleanup
	return nil
}
