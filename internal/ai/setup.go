package ai

import (
	"context"
	"errors"
	"io"

	"github.com/windoze95/dapur-api/internal/config"
	"github.com/windoze95/dapur-api/internal/logger"
	"go.uber.org/zap"
)

// BuildGateway assembles a Gateway from the environment. Invokers that
// cannot be constructed are skipped, so the gateway may come back
// unavailable but never nil. The returned closer releases SDK clients.
func BuildGateway(ctx context.Context, env config.EnvVars) (*Gateway, io.Closer) {
	log := logger.Get()

	candidates := DefaultCandidates()
	if len(env.ModelCandidates) > 0 {
		candidates = CandidatesFromIDs(env.ModelCandidates)
	}

	var invokers []Invoker
	var closers closerList

	if env.GoogleAPIKey != "" {
		for _, name := range env.ModelShapes {
			shape, err := ParseShape(name)
			if err != nil {
				log.Warn("ignoring model call shape", zap.Error(err))
				continue
			}
			switch shape {
			case ShapeGenerativeModel:
				inv, err := NewGenerativeModelInvoker(ctx, env.GoogleAPIKey)
				if err != nil {
					log.Warn("generative model shape unavailable", zap.Error(err))
					continue
				}
				invokers = append(invokers, inv)
				closers = append(closers, inv)
			case ShapeCompletion:
				inv, err := NewCompletionInvoker(env.GoogleAPIKey, env.CompletionBaseURL)
				if err != nil {
					log.Warn("completion shape unavailable", zap.Error(err))
					continue
				}
				invokers = append(invokers, inv)
			case ShapeMessages:
				// Configured through ANTHROPIC_API_KEY below.
			}
		}
	} else {
		log.Info("GOOGLE_API_KEY not set, Gemini candidates disabled")
	}

	if env.AnthropicAPIKey != "" && env.AnthropicModel != "" {
		inv, err := NewMessagesInvoker(env.AnthropicAPIKey)
		if err == nil {
			invokers = append(invokers, inv)
			candidates = append(candidates, ModelCandidate{ID: env.AnthropicModel, Priority: len(candidates)})
		}
	}

	g := NewGateway(GatewayConfig{
		Candidates:     candidates,
		Invokers:       invokers,
		AttemptTimeout: env.AttemptTimeout,
	})
	log.Info("model gateway configured",
		zap.Bool("available", g.Available()),
		zap.Int("candidates", len(g.Candidates())),
		zap.Int("shapes", len(invokers)),
	)
	return g, closers
}

type closerList []io.Closer

func (c closerList) Close() error {
	var errs []error
	for _, closer := range c {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
