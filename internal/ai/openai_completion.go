package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// CompletionInvoker calls models through an OpenAI-compatible chat
// completion endpoint. With the default base URL it reaches Gemini.
type CompletionInvoker struct {
	client *openai.Client
}

// NewCompletionInvoker creates a completion client against baseURL.
func NewCompletionInvoker(apiKey, baseURL string) (*CompletionInvoker, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &CompletionInvoker{client: openai.NewClientWithConfig(cfg)}, nil
}

// Shape implements Invoker.
func (i *CompletionInvoker) Shape() Shape { return ShapeCompletion }

// Supports implements Invoker.
func (i *CompletionInvoker) Supports(c ModelCandidate) bool {
	return !isClaudeModel(c.ID)
}

// Invoke implements Invoker. The "models/" prefix is not part of model ids
// on the completion endpoint.
func (i *CompletionInvoker) Invoke(ctx context.Context, c ModelCandidate, req GenerationRequest) (string, error) {
	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: strings.TrimPrefix(c.ID, "models/"),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxOutputTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", classifyOpenAIError(ctx, err)
	}

	for _, choice := range resp.Choices {
		if strings.TrimSpace(choice.Message.Content) != "" {
			return choice.Message.Content, nil
		}
	}
	return "", wrapInvokeError(KindEmpty, ErrEmptyResponse)
}

// classifyOpenAIError maps completion API errors onto attempt kinds.
func classifyOpenAIError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return wrapInvokeError(KindTimeout, err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return wrapInvokeError(kindFromStatus(apiErr.HTTPStatusCode), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return wrapInvokeError(kindFromStatus(reqErr.HTTPStatusCode), err)
	}
	return wrapInvokeError(kindFromMessage(err.Error()), err)
}
