package recommend

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"schemefinder/internal/llm"
	llmclient "schemefinder/internal/llmClient"
	"schemefinder/internal/scheme"
)

// Chatter answers questions about a single scheme record.
type Chatter struct {
	client llm.LLMClient
	log    *zap.Logger
}

func NewChatter(client llm.LLMClient, log *zap.Logger) *Chatter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Chatter{client: client, log: log}
}

// Chat makes exactly one completion call. It never fails: any error or blank answer
// yields the localized apology.
func (c *Chatter) Chat(ctx context.Context, rec scheme.Record, question, language string) string {
	lang := scheme.ParseLanguage(language)
	if c.client == nil {
		return ChatApology(lang)
	}
	prompt, err := ChatPrompt(rec.Clone(), strings.TrimSpace(question), lang)
	if err != nil {
		c.log.Warn("chat prompt failed", zap.Error(err))
		return ChatApology(lang)
	}
	answer, err := c.client.Complete(llm.WithPhase(ctx, llm.PhaseChat), llmclient.Conversational(prompt))
	if err != nil {
		c.log.Warn("chat completion failed", zap.String("scheme", rec.Name), zap.Error(err))
		return ChatApology(lang)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ChatApology(lang)
	}
	return answer
}
