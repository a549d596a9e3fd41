package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"schemefinder/internal/llm"
	llmclient "schemefinder/internal/llmClient"
	"schemefinder/internal/scheme"
)

func TestChat_Answers(t *testing.T) {
	c := &scriptedClient{answer: func(phase string, req llmclient.Request) (string, error) {
		return "  You need an Aadhaar card.\n", nil
	}}
	got := NewChatter(c, zaptest.NewLogger(t)).Chat(context.Background(), record("Scheme A", "Central", "All States"), "Which documents?", "en")

	assert.Equal(t, "You need an Aadhaar card.", got)
	require.Len(t, c.calls, 1)
	assert.Equal(t, llm.PhaseChat, c.calls[0].Phase)
	assert.False(t, c.calls[0].Req.JSON)
	assert.Equal(t, 150, c.calls[0].Req.MaxTokens)
	assert.Contains(t, c.calls[0].Req.Prompt, "Which documents?")
	assert.Contains(t, c.calls[0].Req.Prompt, "Scheme A description")
}

func TestChat_NeverFails(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		err    error
		lang   string
		want   string
	}{
		{name: "provider error", err: errors.New("boom"), lang: "en", want: ChatApology(scheme.LangEnglish)},
		{name: "blank answer", answer: "   ", lang: "en", want: ChatApology(scheme.LangEnglish)},
		{name: "hindi apology", err: errors.New("boom"), lang: "hi", want: "क्षमा करें, मैं अभी उत्तर नहीं दे सकता।"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &scriptedClient{answer: func(string, llmclient.Request) (string, error) { return tt.answer, tt.err }}
			got := NewChatter(c, nil).Chat(context.Background(), record("X", "State", "Goa"), "q", tt.lang)
			assert.Equal(t, tt.want, got)
			assert.Len(t, c.calls, 1, "chat must not retry")
		})
	}
}

func TestChat_NilClient(t *testing.T) {
	assert.Equal(t, ChatApology(scheme.LangEnglish), NewChatter(nil, nil).Chat(context.Background(), scheme.Record{}, "q", ""))
}
