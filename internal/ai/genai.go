package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GenerativeModelInvoker calls Gemini through a generative-model object
// built per candidate.
type GenerativeModelInvoker struct {
	client *genai.Client
}

// NewGenerativeModelInvoker creates the client shared by every candidate.
func NewGenerativeModelInvoker(ctx context.Context, apiKey string) (*GenerativeModelInvoker, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GenerativeModelInvoker{client: client}, nil
}

// Shape implements Invoker.
func (i *GenerativeModelInvoker) Shape() Shape { return ShapeGenerativeModel }

// Supports implements Invoker.
func (i *GenerativeModelInvoker) Supports(c ModelCandidate) bool {
	return !isClaudeModel(c.ID)
}

// Invoke implements Invoker.
func (i *GenerativeModelInvoker) Invoke(ctx context.Context, c ModelCandidate, req GenerationRequest) (string, error) {
	model := i.client.GenerativeModel(c.ID)
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxOutputTokens))
	}
	model.SetTemperature(req.Temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", classifyGoogleError(ctx, err)
	}

	text := genaiText(resp)
	if strings.TrimSpace(text) == "" {
		return "", wrapInvokeError(KindEmpty, ErrEmptyResponse)
	}
	return text, nil
}

// ListModels implements ModelLister.
func (i *GenerativeModelInvoker) ListModels(ctx context.Context) ([]RemoteModel, error) {
	var models []RemoteModel
	it := i.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gemini models: %w", classifyGoogleError(ctx, err))
		}
		models = append(models, RemoteModel{
			Name:        m.Name,
			DisplayName: m.DisplayName,
			Methods:     m.SupportedGenerationMethods,
		})
	}
	return models, nil
}

// Close releases the underlying client.
func (i *GenerativeModelInvoker) Close() error {
	return i.client.Close()
}

func genaiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}

// classifyGoogleError maps Google API errors onto attempt kinds.
func classifyGoogleError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return wrapInvokeError(KindTimeout, err)
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return wrapInvokeError(kindFromStatus(gErr.Code), err)
	}

	// apierror.APIError from the generated clients.
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) && coded.HTTPCode() > 0 {
		return wrapInvokeError(kindFromStatus(coded.HTTPCode()), err)
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return wrapInvokeError(KindEmpty, err)
	}

	return wrapInvokeError(kindFromMessage(err.Error()), err)
}
