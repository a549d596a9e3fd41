package recommend

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"schemefinder/internal/llm"
	llmclient "schemefinder/internal/llmClient"
	"schemefinder/internal/scheme"
)

var ErrEmptyQuery = errors.New("recommend: query is required")

// Searcher finds schemes matching a free-text keyword.
type Searcher struct {
	client llm.LLMClient
	log    *zap.Logger
}

func NewSearcher(client llm.LLMClient, log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{client: client, log: log}
}

// Search makes exactly one completion call and returns at most 10 repaired records.
// Provider and parse failures are returned to the caller.
func (s *Searcher) Search(ctx context.Context, query, language string) (scheme.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return scheme.SearchResult{}, ErrEmptyQuery
	}
	if s.client == nil {
		return scheme.SearchResult{}, errors.New("recommend: llm client is required")
	}
	prompt, err := SearchPrompt(query, scheme.ParseLanguage(language))
	if err != nil {
		return scheme.SearchResult{}, err
	}
	raw, err := s.client.Complete(llm.WithPhase(ctx, llm.PhaseSearch), llmclient.Factual(prompt))
	if err != nil {
		s.log.Warn("search completion failed", zap.String("query", query), zap.Error(err))
		return scheme.SearchResult{}, err
	}
	recs, err := parseRecords(raw)
	if err != nil {
		s.log.Warn("search answer unparsable", zap.String("query", query), zap.Error(err))
		return scheme.SearchResult{}, err
	}
	if len(recs) > maxSearchResults {
		recs = recs[:maxSearchResults]
	}
	return scheme.SearchResult{Schemes: recs}, nil
}
