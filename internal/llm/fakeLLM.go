package llm

import (
	"context"
	"encoding/json"
	"strings"

	"schemefinder/internal/catalog"
	llmclient "schemefinder/internal/llmClient"
	"schemefinder/internal/scheme"
)

// FakeClient returns deterministic payloads per phase for offline runs. It answers from the
// fallback catalog: names lists every catalog name, details returns the catalog records whose
// names appear in the prompt, search returns the records mentioning the query.
type FakeClient struct {
	cat *catalog.Catalog
}

func NewFakeClient(cat *catalog.Catalog) *FakeClient {
	if cat == nil {
		cat = catalog.Default()
	}
	return &FakeClient{cat: cat}
}

func (f *FakeClient) Name() string { return "fake" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Complete(ctx context.Context, req llmclient.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", llmclient.Failed(f.Name(), err)
	}
	var obj any
	switch PhaseFrom(ctx) {
	case PhaseNames:
		obj = scheme.NameList{
			SchemeNames:   f.cat.Names(),
			GeneralAdvice: []string{"Offline mode: verify every scheme on the official portal before applying."},
		}
	case PhaseDetails:
		obj = map[string]any{"schemes": f.matching(req.Prompt, func(r scheme.Record) string { return r.Name })}
	case PhaseSearch:
		obj = map[string]any{"schemes": f.matching(strings.ToLower(req.Prompt), searchText)}
	case PhaseChat:
		return "I don't have that information based on the available scheme details.", nil
	default:
		obj = map[string]any{}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", llmclient.Failed(f.Name(), err)
	}
	return string(b), nil
}

func (f *FakeClient) matching(prompt string, key func(scheme.Record) string) []scheme.Record {
	out := []scheme.Record{}
	for _, r := range f.cat.Schemes() {
		if k := key(r); k != "" && strings.Contains(prompt, k) {
			out = append(out, r)
		}
	}
	return out
}

// searchText picks the first category tag as the word the query has to contain.
func searchText(r scheme.Record) string {
	if len(r.CategoryTags) == 0 {
		return ""
	}
	return strings.ToLower(r.CategoryTags[0])
}
