package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/metrics"
	"go.uber.org/zap"
)

// Outcome is the tri-state result of a gateway call.
type Outcome int

// Gateway outcomes.
const (
	// OutcomeUnavailable means no credential or no usable invoker is configured.
	OutcomeUnavailable Outcome = iota
	// OutcomeSuccess means some candidate produced text.
	OutcomeSuccess
	// OutcomeExhausted means every configured attempt failed.
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unavailable"
	}
}

// Attempt records one candidate × shape call.
type Attempt struct {
	Model    string
	Shape    Shape
	Kind     ErrorKind
	Err      error
	Reply    string
	Duration time.Duration
}

// Result is what Generate returns. Err is the last attempt error when the
// outcome is OutcomeExhausted.
type Result struct {
	Outcome  Outcome
	Text     string
	Model    string
	Shape    Shape
	Err      error
	Attempts []Attempt
}

// GatewayConfig is the immutable configuration of a Gateway.
type GatewayConfig struct {
	Candidates     []ModelCandidate
	Invokers       []Invoker
	AttemptTimeout time.Duration
}

// Gateway tries an ordered list of model candidates with every configured
// call shape until one produces text.
type Gateway struct {
	candidates     []ModelCandidate
	invokers       []Invoker
	attemptTimeout time.Duration
	fingerprint    string
}

// DefaultAttemptTimeout bounds a single model call.
const DefaultAttemptTimeout = 30 * time.Second

// NewGateway creates a Gateway. Candidates are ordered by priority.
func NewGateway(cfg GatewayConfig) *Gateway {
	g := &Gateway{
		candidates:     sortCandidates(cfg.Candidates),
		invokers:       append([]Invoker(nil), cfg.Invokers...),
		attemptTimeout: cfg.AttemptTimeout,
	}
	if g.attemptTimeout <= 0 {
		g.attemptTimeout = DefaultAttemptTimeout
	}
	g.fingerprint = g.computeFingerprint()
	return g
}

// Available reports whether Generate can attempt any model call.
func (g *Gateway) Available() bool {
	if g == nil || len(g.invokers) == 0 {
		return false
	}
	for _, c := range g.candidates {
		for _, inv := range g.invokers {
			if inv.Supports(c) {
				return true
			}
		}
	}
	return false
}

// Candidates returns the candidates in the order they are tried.
func (g *Gateway) Candidates() []ModelCandidate {
	if g == nil {
		return nil
	}
	return append([]ModelCandidate(nil), g.candidates...)
}

// Shapes returns the configured call shapes in the order they are tried.
func (g *Gateway) Shapes() []Shape {
	if g == nil {
		return nil
	}
	shapes := make([]Shape, len(g.invokers))
	for i, inv := range g.invokers {
		shapes[i] = inv.Shape()
	}
	return shapes
}

// Listers returns the configured invokers that can enumerate remote models.
func (g *Gateway) Listers() []ModelLister {
	if g == nil {
		return nil
	}
	var listers []ModelLister
	for _, inv := range g.invokers {
		if l, ok := inv.(ModelLister); ok {
			listers = append(listers, l)
		}
	}
	return listers
}

// Fingerprint identifies the gateway configuration. It changes when the
// gateway becomes available or unavailable and when candidates or shapes
// change, so cached answers from a different setup are not reused.
func (g *Gateway) Fingerprint() string {
	if g == nil {
		return "off"
	}
	return g.fingerprint
}

func (g *Gateway) computeFingerprint() string {
	if !g.Available() {
		return "off"
	}
	parts := make([]string, 0, len(g.candidates)+len(g.invokers))
	for _, c := range g.candidates {
		parts = append(parts, c.ID)
	}
	for _, s := range g.Shapes() {
		parts = append(parts, string(s))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "on-" + hex.EncodeToString(sum[:6])
}

// Generate tries every candidate in priority order and, for each, every
// invoker in configured order. The first non-empty text wins. Failures are
// recorded and never returned mid-loop.
func (g *Gateway) Generate(ctx context.Context, req GenerationRequest) Result {
	if !g.Available() {
		logger.Get().Debug("model gateway unavailable")
		metrics.GenerationOutcomes.WithLabelValues(OutcomeUnavailable.String()).Inc()
		return Result{Outcome: OutcomeUnavailable}
	}

	var attempts []Attempt
	for _, c := range g.candidates {
		for _, inv := range g.invokers {
			if !inv.Supports(c) {
				continue
			}
			if err := ctx.Err(); err != nil {
				attempts = append(attempts, Attempt{Model: c.ID, Shape: inv.Shape(), Kind: KindTimeout, Err: err})
				return g.exhausted(attempts)
			}

			attempt := g.try(ctx, inv, c, req)
			if attempt.Err == nil {
				metrics.GenerationOutcomes.WithLabelValues(OutcomeSuccess.String()).Inc()
				return Result{
					Outcome:  OutcomeSuccess,
					Text:     attempt.Reply,
					Model:    c.ID,
					Shape:    inv.Shape(),
					Attempts: append(attempts, attempt),
				}
			}

			logger.Get().Warn("model attempt failed, trying next",
				zap.String("model", c.ID),
				zap.String("shape", string(inv.Shape())),
				zap.String("kind", string(attempt.Kind)),
				zap.Error(attempt.Err),
			)
			attempts = append(attempts, attempt)
		}
	}

	return g.exhausted(attempts)
}

func (g *Gateway) exhausted(attempts []Attempt) Result {
	metrics.GenerationOutcomes.WithLabelValues(OutcomeExhausted.String()).Inc()
	res := Result{Outcome: OutcomeExhausted, Attempts: attempts}
	if len(attempts) > 0 {
		res.Err = attempts[len(attempts)-1].Err
	}
	logger.Get().Error("all model candidates failed", zap.Int("attempts", len(attempts)), zap.Error(res.Err))
	return res
}

// Probe calls every supported candidate × shape pair once without stopping
// at the first success. It is meant for diagnostics.
func (g *Gateway) Probe(ctx context.Context, req GenerationRequest) []Attempt {
	if g == nil {
		return nil
	}
	var attempts []Attempt
	for _, c := range g.candidates {
		for _, inv := range g.invokers {
			if !inv.Supports(c) {
				continue
			}
			attempts = append(attempts, g.try(ctx, inv, c, req))
		}
	}
	return attempts
}

// try runs one invocation with its own timeout. A panicking invoker is
// reported as a failed attempt.
func (g *Gateway) try(ctx context.Context, inv Invoker, c ModelCandidate, req GenerationRequest) (attempt Attempt) {
	attempt = Attempt{Model: c.ID, Shape: inv.Shape()}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			attempt.Err = fmt.Errorf("invoker panic: %v", r)
			attempt.Kind = KindOther
		}
		attempt.Duration = time.Since(start)
		result := "ok"
		if attempt.Err != nil {
			result = string(attempt.Kind)
		}
		metrics.ModelAttempts.WithLabelValues(c.ID, string(inv.Shape()), result).Inc()
	}()

	callCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
	defer cancel()

	text, err := inv.Invoke(callCtx, c, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		attempt.Err = err
		attempt.Kind = KindOf(err)
		return attempt
	}

	attempt.Reply = strings.TrimSpace(text)
	return attempt
}
