package recommend

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"schemefinder/internal/llm"
	llmclient "schemefinder/internal/llmClient"
	"schemefinder/internal/scheme"
)

// scriptedClient answers through a per-test function and records every call.
type scriptedClient struct {
	mu     sync.Mutex
	calls  []scriptedCall
	answer func(phase string, req llmclient.Request) (string, error)
}

type scriptedCall struct {
	Phase string
	Req   llmclient.Request
}

func (s *scriptedClient) Name() string { return "scripted" }
func (s *scriptedClient) Close() error { return nil }

func (s *scriptedClient) Complete(ctx context.Context, req llmclient.Request) (string, error) {
	phase := llm.PhaseFrom(ctx)
	s.mu.Lock()
	s.calls = append(s.calls, scriptedCall{Phase: phase, Req: req})
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", llmclient.Failed("scripted", err)
	}
	return s.answer(phase, req)
}

func (s *scriptedClient) count(phase string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Phase == phase {
			n++
		}
	}
	return n
}

func namesJSON(names []string, advice ...string) string {
	b, _ := json.Marshal(scheme.NameList{SchemeNames: names, GeneralAdvice: advice})
	return string(b)
}

func recordsJSON(recs ...scheme.Record) string {
	if recs == nil {
		recs = []scheme.Record{}
	}
	b, _ := json.Marshal(map[string]any{"schemes": recs})
	return string(b)
}

func record(name, typ, state string) scheme.Record {
	return scheme.Record{
		Name:               name,
		Type:               typ,
		State:              state,
		CategoryTags:       []string{"Welfare"},
		Description:        name + " description",
		EligibilitySummary: []string{"Resident"},
		RequiredDocuments:  []string{"Aadhaar"},
		ApplicationSteps:   []string{"Apply online"},
		ApplicationURL:     "https://example.gov.in/" + scheme.Slug(name),
		UsefulnessScore:    70,
	}
}

// mentioned returns the names from universe that appear in prompt, in universe order.
func mentioned(prompt string, universe []string) []string {
	var out []string
	for _, n := range universe {
		if strings.Contains(prompt, `"`+n+`"`) {
			out = append(out, n)
		}
	}
	return out
}

func noRetry() llm.RetryPolicy { return llm.RetryPolicy{MaxAttempts: 1} }
