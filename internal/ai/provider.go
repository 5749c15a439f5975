package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Shape identifies how a model is called.
type Shape string

// Supported call shapes.
const (
	// ShapeGenerativeModel builds a generative-model object per candidate and
	// asks it to generate content.
	ShapeGenerativeModel Shape = "generative_model"
	// ShapeCompletion issues a single chat completion request naming the model.
	ShapeCompletion Shape = "completion"
	// ShapeMessages uses the Anthropic Messages API.
	ShapeMessages Shape = "messages"
)

// ParseShape converts a configured shape name into a Shape.
func ParseShape(name string) (Shape, error) {
	switch s := Shape(strings.ToLower(strings.TrimSpace(name))); s {
	case ShapeGenerativeModel, ShapeCompletion, ShapeMessages:
		return s, nil
	default:
		return "", fmt.Errorf("unknown model call shape %q", name)
	}
}

// Invoker performs one model call in a specific shape. Implementations must
// be safe for concurrent use.
type Invoker interface {
	Shape() Shape
	// Supports reports whether the invoker can address the candidate at all.
	// Unsupported pairs are skipped without counting as an attempt.
	Supports(candidate ModelCandidate) bool
	Invoke(ctx context.Context, candidate ModelCandidate, req GenerationRequest) (string, error)
}

// ModelLister is implemented by invokers that can enumerate remote models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]RemoteModel, error)
}

// RemoteModel describes a model visible to the configured credential.
type RemoteModel struct {
	Name        string
	DisplayName string
	Methods     []string
}

// GenerationRequest is a single-turn text generation request.
type GenerationRequest struct {
	Prompt          string
	MaxOutputTokens int
	Temperature     float32
}

// ModelCandidate is one entry of the ordered model fallback list. Lower
// Priority values are tried first.
type ModelCandidate struct {
	ID       string
	Priority int
}

// DefaultCandidates is the built-in fallback order: fast flash-tier models
// first, pro-tier models last.
func DefaultCandidates() []ModelCandidate {
	return CandidatesFromIDs([]string{
		"models/gemini-flash-latest",
		"models/gemini-2.5-flash",
		"models/gemini-2.0-flash",
		"models/gemini-2.5-pro",
		"models/gemini-3-pro-preview",
	})
}

// CandidatesFromIDs assigns priorities in list order, dropping blanks and
// duplicates.
func CandidatesFromIDs(ids []string) []ModelCandidate {
	seen := make(map[string]bool, len(ids))
	candidates := make([]ModelCandidate, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		candidates = append(candidates, ModelCandidate{ID: id, Priority: len(candidates)})
	}
	return candidates
}

func sortCandidates(candidates []ModelCandidate) []ModelCandidate {
	sorted := append([]ModelCandidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}

func isClaudeModel(id string) bool {
	return strings.HasPrefix(id, "claude-")
}
