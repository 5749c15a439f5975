package service

import (
	"context"

	"github.com/windoze95/dapur-api/internal/ai"
)

// Generator produces model text. *ai.Gateway satisfies it.
type Generator interface {
	Available() bool
	Generate(ctx context.Context, req ai.GenerationRequest) ai.Result
	Fingerprint() string
}

var _ Generator = (*ai.Gateway)(nil)

func generate(ctx context.Context, gen Generator, req ai.GenerationRequest) ai.Result {
	if gen == nil {
		return ai.Result{Outcome: ai.OutcomeUnavailable}
	}
	return gen.Generate(ctx, req)
}

func fingerprint(gen Generator) string {
	if gen == nil {
		return "off"
	}
	return gen.Fingerprint()
}
