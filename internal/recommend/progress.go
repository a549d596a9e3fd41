package recommend

import (
	"context"

	"schemefinder/internal/scheme"
)

// Event kinds published while a recommendation runs.
const (
	EventNames    = "names"
	EventBatch    = "batch"
	EventFallback = "fallback"
	EventDone     = "done"
)

// Event reports one step of a running recommendation.
type Event struct {
	Kind    string          `json:"kind"`
	Names   []string        `json:"names,omitempty"`
	Batch   int             `json:"batch"`
	Batches int             `json:"batches,omitempty"`
	Schemes []scheme.Record `json:"schemes,omitempty"`
	Failed  bool            `json:"failed,omitempty"`
}

// Observer receives events. Batch events arrive from concurrent goroutines, so an Observer
// must be safe for concurrent use and should not block.
type Observer func(Event)

type ctxKeyObserver struct{}

// WithProgress attaches an observer to every Recommend call made with ctx.
func WithProgress(ctx context.Context, obs Observer) context.Context {
	return context.WithValue(ctx, ctxKeyObserver{}, obs)
}

func emit(ctx context.Context, ev Event) {
	if obs, ok := ctx.Value(ctxKeyObserver{}).(Observer); ok && obs != nil {
		obs(ev)
	}
}
