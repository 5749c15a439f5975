package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeInvoker is a scripted Invoker. reply is called with "model/shape" and
// decides the outcome; calls records the order of invocations.
type fakeInvoker struct {
	shape      Shape
	claudeOnly bool
	reply      func(ctx context.Context, key string) (string, error)

	mu    sync.Mutex
	calls []string
}

func (f *fakeInvoker) Shape() Shape { return f.shape }

func (f *fakeInvoker) Supports(c ModelCandidate) bool {
	return isClaudeModel(c.ID) == f.claudeOnly
}

func (f *fakeInvoker) Invoke(ctx context.Context, c ModelCandidate, req GenerationRequest) (string, error) {
	key := c.ID + "/" + string(f.shape)
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	return f.reply(ctx, key)
}

func (f *fakeInvoker) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func alwaysFail(err error) func(context.Context, string) (string, error) {
	return func(context.Context, string) (string, error) { return "", err }
}

var testRequest = GenerationRequest{Prompt: "Apa itu rendang?", MaxOutputTokens: 250, Temperature: 0.2}

func TestGenerate_UnavailableWithoutInvokers(t *testing.T) {
	g := NewGateway(GatewayConfig{Candidates: DefaultCandidates()})

	res := g.Generate(context.Background(), testRequest)
	if res.Outcome != OutcomeUnavailable {
		t.Fatalf("Outcome = %v, want unavailable", res.Outcome)
	}
	if len(res.Attempts) != 0 || res.Err != nil {
		t.Errorf("unavailable result should carry no attempts or error, got %+v", res)
	}
	if g.Available() {
		t.Error("Available() = true, want false")
	}
}

func TestGenerate_UnavailableWhenNoInvokerSupportsCandidates(t *testing.T) {
	inv := &fakeInvoker{shape: ShapeMessages, claudeOnly: true, reply: alwaysFail(errors.New("unused"))}
	g := NewGateway(GatewayConfig{Candidates: DefaultCandidates(), Invokers: []Invoker{inv}})

	if res := g.Generate(context.Background(), testRequest); res.Outcome != OutcomeUnavailable {
		t.Fatalf("Outcome = %v, want unavailable", res.Outcome)
	}
	if len(inv.Calls()) != 0 {
		t.Errorf("invoker called %v, want no calls", inv.Calls())
	}
}

func TestGenerate_FallsBackToNextCandidate(t *testing.T) {
	inv := &fakeInvoker{shape: ShapeCompletion, reply: func(_ context.Context, key string) (string, error) {
		if strings.HasPrefix(key, "m1/") {
			return "", wrapInvokeError(KindQuota, errors.New("429 quota exceeded"))
		}
		return "Rendang adalah masakan Minang.", nil
	}}
	g := NewGateway(GatewayConfig{
		Candidates: CandidatesFromIDs([]string{"m1", "m2", "m3"}),
		Invokers:   []Invoker{inv},
	})

	res := g.Generate(context.Background(), testRequest)
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("Outcome = %v, want success (err=%v)", res.Outcome, res.Err)
	}
	if res.Model != "m2" {
		t.Errorf("Model = %q, want m2", res.Model)
	}
	if res.Text != "Rendang adalah masakan Minang." {
		t.Errorf("Text = %q", res.Text)
	}
	if len(res.Attempts) != 2 || res.Attempts[0].Kind != KindQuota {
		t.Errorf("Attempts = %+v, want quota failure then success", res.Attempts)
	}
	if calls := inv.Calls(); len(calls) != 2 {
		t.Errorf("calls = %v, want m3 never tried", calls)
	}
}

func TestGenerate_TriesEveryShapeBeforeNextCandidate(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(fail bool) func(context.Context, string) (string, error) {
		return func(_ context.Context, key string) (string, error) {
			mu.Lock()
			order = append(order, key)
			mu.Unlock()
			if fail {
				return "", errors.New("boom")
			}
			return "ok", nil
		}
	}
	gm := &fakeInvoker{shape: ShapeGenerativeModel, reply: record(true)}
	cp := &fakeInvoker{shape: ShapeCompletion, reply: func(ctx context.Context, key string) (string, error) {
		if key == "m1/completion" {
			return record(true)(ctx, key)
		}
		return record(false)(ctx, key)
	}}
	g := NewGateway(GatewayConfig{
		Candidates: CandidatesFromIDs([]string{"m1", "m2"}),
		Invokers:   []Invoker{gm, cp},
	})

	res := g.Generate(context.Background(), testRequest)
	if res.Outcome != OutcomeSuccess || res.Model != "m2" || res.Shape != ShapeCompletion {
		t.Fatalf("result = %+v, want success on m2/completion", res)
	}
	want := []string{"m1/generative_model", "m1/completion", "m2/generative_model", "m2/completion"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestGenerate_ExhaustedKeepsLastError(t *testing.T) {
	n := 0
	inv := &fakeInvoker{shape: ShapeCompletion, reply: func(context.Context, string) (string, error) {
		n++
		return "", fmt.Errorf("failure %d", n)
	}}
	g := NewGateway(GatewayConfig{
		Candidates: CandidatesFromIDs([]string{"m1", "m2", "m3"}),
		Invokers:   []Invoker{inv},
	})

	res := g.Generate(context.Background(), testRequest)
	if res.Outcome != OutcomeExhausted {
		t.Fatalf("Outcome = %v, want exhausted", res.Outcome)
	}
	if res.Err == nil || res.Err.Error() != "failure 3" {
		t.Errorf("Err = %v, want failure 3", res.Err)
	}
	if len(res.Attempts) != 3 {
		t.Errorf("len(Attempts) = %d, want 3", len(res.Attempts))
	}
}

func TestGenerate_EmptyTextIsFailure(t *testing.T) {
	inv := &fakeInvoker{shape: ShapeCompletion, reply: func(_ context.Context, key string) (string, error) {
		if key == "m1/completion" {
			return "   \n", nil
		}
		return "isi", nil
	}}
	g := NewGateway(GatewayConfig{Candidates: CandidatesFromIDs([]string{"m1", "m2"}), Invokers: []Invoker{inv}})

	res := g.Generate(context.Background(), testRequest)
	if res.Outcome != OutcomeSuccess || res.Model != "m2" {
		t.Fatalf("result = %+v, want success on m2", res)
	}
	if res.Attempts[0].Kind != KindEmpty {
		t.Errorf("first attempt kind = %q, want %q", res.Attempts[0].Kind, KindEmpty)
	}
}

func TestGenerate_PanickingInvokerIsContained(t *testing.T) {
	inv := &fakeInvoker{shape: ShapeCompletion, reply: func(_ context.Context, key string) (string, error) {
		if key == "m1/completion" {
			panic("sdk bug")
		}
		return "aman", nil
	}}
	g := NewGateway(GatewayConfig{Candidates: CandidatesFromIDs([]string{"m1", "m2"}), Invokers: []Invoker{inv}})

	res := g.Generate(context.Background(), testRequest)
	if res.Outcome != OutcomeSuccess || res.Text != "aman" {
		t.Fatalf("result = %+v, want success after panic", res)
	}
	if res.Attempts[0].Err == nil || !strings.Contains(res.Attempts[0].Err.Error(), "sdk bug") {
		t.Errorf("first attempt err = %v, want panic recorded", res.Attempts[0].Err)
	}
}

func TestGenerate_AttemptTimeout(t *testing.T) {
	inv := &fakeInvoker{shape: ShapeCompletion, reply: func(ctx context.Context, key string) (string, error) {
		if key == "slow/completion" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "cepat", nil
	}}
	g := NewGateway(GatewayConfig{
		Candidates:     CandidatesFromIDs([]string{"slow", "fast"}),
		Invokers:       []Invoker{inv},
		AttemptTimeout: 20 * time.Millisecond,
	})

	res := g.Generate(context.Background(), testRequest)
	if res.Outcome != OutcomeSuccess || res.Model != "fast" {
		t.Fatalf("result = %+v, want success on fast", res)
	}
	if res.Attempts[0].Kind != KindTimeout {
		t.Errorf("slow attempt kind = %q, want timeout", res.Attempts[0].Kind)
	}
}

func TestGenerate_CanceledContextStops(t *testing.T) {
	inv := &fakeInvoker{shape: ShapeCompletion, reply: alwaysFail(errors.New("unused"))}
	g := NewGateway(GatewayConfig{Candidates: CandidatesFromIDs([]string{"m1", "m2"}), Invokers: []Invoker{inv}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := g.Generate(ctx, testRequest)
	if res.Outcome != OutcomeExhausted {
		t.Fatalf("Outcome = %v, want exhausted", res.Outcome)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", res.Err)
	}
	if len(inv.Calls()) != 0 {
		t.Errorf("calls = %v, want none", inv.Calls())
	}
}

func TestNewGateway_SortsByPriority(t *testing.T) {
	g := NewGateway(GatewayConfig{Candidates: []ModelCandidate{
		{ID: "pro", Priority: 2},
		{ID: "flash", Priority: 0},
		{ID: "flash-lite", Priority: 1},
	}})

	got := g.Candidates()
	if got[0].ID != "flash" || got[1].ID != "flash-lite" || got[2].ID != "pro" {
		t.Errorf("Candidates = %+v, want flash, flash-lite, pro", got)
	}
}

func TestDefaultCandidates_FlashFirst(t *testing.T) {
	c := DefaultCandidates()
	if len(c) != 5 {
		t.Fatalf("len = %d, want 5", len(c))
	}
	if !strings.Contains(c[0].ID, "flash") {
		t.Errorf("first candidate = %q, want a flash model", c[0].ID)
	}
	if !strings.Contains(c[len(c)-1].ID, "pro") {
		t.Errorf("last candidate = %q, want a pro model", c[len(c)-1].ID)
	}
}

func TestCandidatesFromIDs_DropsBlanksAndDuplicates(t *testing.T) {
	c := CandidatesFromIDs([]string{" a ", "", "b", "a"})
	if len(c) != 2 || c[0].ID != "a" || c[1].ID != "b" || c[1].Priority != 1 {
		t.Errorf("CandidatesFromIDs = %+v, want [a/0 b/1]", c)
	}
}

func TestFingerprint(t *testing.T) {
	inv := &fakeInvoker{shape: ShapeCompletion, reply: alwaysFail(errors.New("x"))}

	off := NewGateway(GatewayConfig{Candidates: DefaultCandidates()})
	on := NewGateway(GatewayConfig{Candidates: DefaultCandidates(), Invokers: []Invoker{inv}})
	onAgain := NewGateway(GatewayConfig{Candidates: DefaultCandidates(), Invokers: []Invoker{inv}})
	other := NewGateway(GatewayConfig{Candidates: CandidatesFromIDs([]string{"m1"}), Invokers: []Invoker{inv}})

	if off.Fingerprint() != "off" {
		t.Errorf("unavailable fingerprint = %q, want off", off.Fingerprint())
	}
	if on.Fingerprint() == off.Fingerprint() {
		t.Error("available and unavailable gateways share a fingerprint")
	}
	if on.Fingerprint() != onAgain.Fingerprint() {
		t.Error("identical configurations should share a fingerprint")
	}
	if on.Fingerprint() == other.Fingerprint() {
		t.Error("different candidate lists should not share a fingerprint")
	}

	var nilGateway *Gateway
	if nilGateway.Fingerprint() != "off" || nilGateway.Available() {
		t.Error("nil gateway should be unavailable with fingerprint off")
	}
}

func TestProbe_TriesEverything(t *testing.T) {
	inv := &fakeInvoker{shape: ShapeCompletion, reply: func(_ context.Context, key string) (string, error) {
		if key == "m2/completion" {
			return "", wrapInvokeError(KindNotFound, errors.New("404 model not found"))
		}
		return "pong", nil
	}}
	g := NewGateway(GatewayConfig{Candidates: CandidatesFromIDs([]string{"m1", "m2", "m3"}), Invokers: []Invoker{inv}})

	attempts := g.Probe(context.Background(), GenerationRequest{Prompt: "ping"})
	if len(attempts) != 3 {
		t.Fatalf("len(attempts) = %d, want 3", len(attempts))
	}
	if attempts[0].Reply != "pong" || attempts[1].Kind != KindNotFound || attempts[2].Err != nil {
		t.Errorf("attempts = %+v", attempts)
	}
}

func TestParseShape(t *testing.T) {
	for _, name := range []string{"generative_model", " Completion ", "messages"} {
		if _, err := ParseShape(name); err != nil {
			t.Errorf("ParseShape(%q) error: %v", name, err)
		}
	}
	if _, err := ParseShape("grpc"); err == nil {
		t.Error("ParseShape(grpc) should fail")
	}
}

func TestOutcomeString(t *testing.T) {
	if OutcomeSuccess.String() != "success" || OutcomeExhausted.String() != "exhausted" || OutcomeUnavailable.String() != "unavailable" {
		t.Error("unexpected Outcome strings")
	}
}
