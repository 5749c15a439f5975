package ai

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// MessagesInvoker calls Claude models through the Anthropic Messages API.
// It only addresses "claude-" candidates.
type MessagesInvoker struct {
	client anthropic.Client
}

// NewMessagesInvoker creates a MessagesInvoker. Extra request options are
// appended after the API key.
func NewMessagesInvoker(apiKey string, opts ...option.RequestOption) (*MessagesInvoker, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &MessagesInvoker{client: anthropic.NewClient(opts...)}, nil
}

// Shape implements Invoker.
func (i *MessagesInvoker) Shape() Shape { return ShapeMessages }

// Supports implements Invoker.
func (i *MessagesInvoker) Supports(c ModelCandidate) bool {
	return isClaudeModel(c.ID)
}

// Invoke implements Invoker.
func (i *MessagesInvoker) Invoke(ctx context.Context, c ModelCandidate, req GenerationRequest) (string, error) {
	maxTokens := int64(req.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.ID),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			newUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(float64(req.Temperature)),
	}

	resp, err := i.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyAnthropicError(ctx, err)
	}
	return extractTextContent(resp)
}

// newUserMessage creates a user message param with the given content blocks.
func newUserMessage(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.MessageParam{
		Role:    anthropic.MessageParamRoleUser,
		Content: blocks,
	}
}

// classifyAnthropicError maps Claude API errors onto attempt kinds.
func classifyAnthropicError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return wrapInvokeError(KindTimeout, err)
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return wrapInvokeError(kindFromStatus(apiErr.StatusCode), err)
	}
	return wrapInvokeError(kindFromMessage(err.Error()), err)
}

// extractTextContent returns the concatenated text blocks from a Claude response.
func extractTextContent(msg *anthropic.Message) (string, error) {
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", wrapInvokeError(KindEmpty, ErrEmptyResponse)
	}
	return text, nil
}
