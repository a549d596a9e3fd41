package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"schemefinder/internal/catalog"
	llmclient "schemefinder/internal/llmClient"
)

type stubClient struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (s *stubClient) Name() string { return "stub" }
func (s *stubClient) Close() error { return nil }
func (s *stubClient) Complete(ctx context.Context, req llmclient.Request) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.text, s.err
}

type tagClient struct {
	next  LLMClient
	tag   string
	order *[]string
}

func (t *tagClient) Name() string { return t.next.Name() }
func (t *tagClient) Close() error { return t.next.Close() }
func (t *tagClient) Complete(ctx context.Context, req llmclient.Request) (string, error) {
	*t.order = append(*t.order, t.tag)
	return t.next.Complete(ctx, req)
}

func tag(name string, order *[]string) Middleware {
	return func(next LLMClient) LLMClient { return &tagClient{next: next, tag: name, order: order} }
}

func TestWrap_Order(t *testing.T) {
	var order []string
	c := Wrap(&stubClient{text: "ok"}, tag("A", &order), nil, tag("B", &order))
	if _, err := c.Complete(context.Background(), llmclient.Request{}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if strings.Join(order, ",") != "A,B" {
		t.Fatalf("order: got %v", order)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	inner := &stubClient{text: "ok"}
	if c := RateLimit(0, 0)(inner); c != LLMClient(inner) {
		t.Fatalf("rps <= 0 should return the inner client")
	}
}

func TestRateLimit_WaitRespectsContext(t *testing.T) {
	inner := &stubClient{text: "ok"}
	c := RateLimit(0.001, 1)(inner)
	if _, err := c.Complete(context.Background(), llmclient.Request{}); err != nil {
		t.Fatalf("first call should use the burst: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, llmclient.Request{})
	if !errors.Is(err, llmclient.ErrCompletionFailed) {
		t.Fatalf("expected completion failure, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("limited call must not reach the provider: calls=%d", inner.calls)
	}
}

func TestWithLogging_PassesThrough(t *testing.T) {
	inner := &stubClient{err: errors.New("boom")}
	c := WithLogging(zaptest.NewLogger(t))(inner)
	_, err := c.Complete(WithPhase(context.Background(), PhaseNames), llmclient.Request{Prompt: "p"})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("error should pass through unchanged, got %v", err)
	}
	if WithLogging(nil)(inner) != LLMClient(inner) {
		t.Fatalf("nil logger should disable logging")
	}
}

func TestWithMetrics_PassesThrough(t *testing.T) {
	c := WithMetrics()(&stubClient{text: "hello"})
	got, err := c.Complete(WithPhase(context.Background(), PhaseChat), llmclient.Request{})
	if err != nil || got != "hello" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestPhaseFrom(t *testing.T) {
	if got := PhaseFrom(context.Background()); got != "unknown" {
		t.Fatalf("default phase: %s", got)
	}
	if got := PhaseFrom(WithPhase(context.Background(), PhaseSearch)); got != PhaseSearch {
		t.Fatalf("phase: %s", got)
	}
}

func TestFakeClient(t *testing.T) {
	cat := catalog.Default()
	f := NewFakeClient(cat)

	names, err := f.Complete(WithPhase(context.Background(), PhaseNames), llmclient.Request{})
	if err != nil || !strings.Contains(names, cat.Names()[0]) {
		t.Fatalf("names: %s err=%v", names, err)
	}

	first := cat.Names()[0]
	details, err := f.Complete(WithPhase(context.Background(), PhaseDetails), llmclient.Request{Prompt: `["` + first + `"]`})
	if err != nil || !strings.Contains(details, `"schemes":[{"name":`) {
		t.Fatalf("details: %s err=%v", details, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Complete(ctx, llmclient.Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled: %v", err)
	}
}

func TestOpen_Providers(t *testing.T) {
	c, err := Open(context.Background(), ProviderConfig{Provider: "fake", RPS: 5, Burst: 1}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("fake: %v", err)
	}
	if c.Name() != "fake" {
		t.Fatalf("name: %s", c.Name())
	}
	if _, err := Open(context.Background(), ProviderConfig{Provider: "carrier-pigeon"}, nil, nil); err == nil {
		t.Fatalf("unknown provider should fail")
	}
	t.Setenv("GROQ_API_KEY", "")
	if _, err := Open(context.Background(), ProviderConfig{Provider: "groq"}, nil, nil); err == nil {
		t.Fatalf("groq without key should fail")
	}
}
