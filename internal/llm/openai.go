package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/solvent/internal/model"
)

// OpenAIClient talks to any OpenAI-compatible chat endpoint. Gemini is
// reached through its OpenAI-compatible surface, so one client covers
// every configured backend model.
type OpenAIClient struct {
	client  *openai.Client
	timeout time.Duration
	tokens  int
}

// NewOpenAIClient creates a client for the configured endpoint
func NewOpenAIClient(cfg model.LLMConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, &model.ConfigurationError{Field: "llm.api_key", Reason: "API key is required"}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	tokens := cfg.MaxTokens
	if tokens == 0 {
		tokens = 1000
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		timeout: timeout,
		tokens:  tokens,
	}, nil
}

// Generate runs one prompt against the given model
func (c *OpenAIClient) Generate(ctx context.Context, modelName, prompt string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.tokens,
		Temperature: 0.2, // answers, not prose
	})
	if err != nil {
		return Result{}, &model.ReasoningBackendError{Backend: modelName, Err: err}
	}

	if len(resp.Choices) == 0 {
		return Result{}, &model.ReasoningBackendError{Backend: modelName, Err: fmt.Errorf("empty response")}
	}

	choice := resp.Choices[0]
	return Result{
		Text:    strings.TrimSpace(choice.Message.Content),
		Blocked: choice.FinishReason == openai.FinishReasonContentFilter,
	}, nil
}

// ListModels returns the model identifiers the endpoint serves
func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
