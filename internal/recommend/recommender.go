package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"schemefinder/internal/catalog"
	"schemefinder/internal/llm"
	llmclient "schemefinder/internal/llmClient"
	"schemefinder/internal/metrics"
	"schemefinder/internal/scheme"
)

// DefaultBatchSize is how many names one details call describes.
const DefaultBatchSize = 5

var ErrInvalidProfile = errors.New("recommend: invalid profile")

type Options struct {
	// BatchSize defaults to DefaultBatchSize.
	BatchSize int
	// MaxConcurrency caps in-flight detail calls. Zero runs every batch at once.
	MaxConcurrency int
	// Retry wraps each phase call together with its parsing. The zero value means
	// DefaultRetryPolicy.
	Retry  llm.RetryPolicy
	Logger *zap.Logger
}

// Recommender runs the two-phase generation: a name discovery call followed by concurrent
// detail calls, one per batch of names.
type Recommender struct {
	client    llm.LLMClient
	cat       *catalog.Catalog
	batchSize int
	limit     int
	retry     llm.RetryPolicy
	log       *zap.Logger
}

func NewRecommender(client llm.LLMClient, cat *catalog.Catalog, opts Options) (*Recommender, error) {
	if client == nil {
		return nil, errors.New("recommend: llm client is required")
	}
	if cat == nil {
		return nil, errors.New("recommend: fallback catalog is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	retry := opts.Retry
	if retry.MaxAttempts == 0 && retry.Backoff == nil {
		retry = llm.DefaultRetryPolicy()
	}
	if retry.OnRetry == nil {
		retry.OnRetry = func(ctx context.Context, attempt int, wait time.Duration, err error) {
			log.Warn("llm call failed, retrying",
				zap.String("phase", llm.PhaseFrom(ctx)),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}
	}
	return &Recommender{
		client:    client,
		cat:       cat,
		batchSize: size,
		limit:     opts.MaxConcurrency,
		retry:     retry,
		log:       log,
	}, nil
}

// Recommend never fails because of the model: when discovery yields nothing the fallback
// catalog is returned. Errors are returned only for an invalid profile or a cancelled ctx.
func (r *Recommender) Recommend(ctx context.Context, p scheme.UserProfile) (scheme.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return scheme.Recommendation{}, err
	}
	p = p.Normalized()
	if err := p.Validate(); err != nil {
		return scheme.Recommendation{}, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	lang := p.Lang()

	names, err := r.discover(ctx, p)
	if err != nil || len(names.SchemeNames) == 0 {
		if cerr := ctx.Err(); cerr != nil {
			return scheme.Recommendation{}, cerr
		}
		if err != nil {
			r.log.Warn("name discovery failed, serving fallback catalog", zap.Error(err))
		} else {
			r.log.Info("name discovery returned no names, serving fallback catalog")
		}
		metrics.RecommendFallbacks.Inc()
		rec := scheme.Recommendation{
			Schemes:       r.cat.Schemes(),
			GeneralAdvice: []string{FallbackAdvice(lang)},
		}
		emit(ctx, Event{Kind: EventFallback, Schemes: rec.Schemes})
		emit(ctx, Event{Kind: EventDone})
		return rec, nil
	}

	batches := Batches(names.SchemeNames, r.batchSize)
	emit(ctx, Event{Kind: EventNames, Names: names.SchemeNames, Batches: len(batches)})

	results := make([][]scheme.Record, len(batches))
	var g errgroup.Group
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for i, batch := range batches {
		g.Go(func() error {
			recs, err := r.details(ctx, p, batch)
			if err != nil {
				r.log.Warn("scheme details batch failed",
					zap.Int("batch", i),
					zap.Strings("names", batch),
					zap.Error(err))
				metrics.RecommendBatches.WithLabelValues("failed").Inc()
				emit(ctx, Event{Kind: EventBatch, Batch: i, Names: batch, Failed: true})
				return nil
			}
			metrics.RecommendBatches.WithLabelValues("ok").Inc()
			results[i] = recs
			emit(ctx, Event{Kind: EventBatch, Batch: i, Names: batch, Schemes: recs})
			return nil
		})
	}
	// Batch failures are absorbed above; Wait only synchronizes.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return scheme.Recommendation{}, err
	}

	out := scheme.Recommendation{GeneralAdvice: names.GeneralAdvice}
	for _, recs := range results {
		out.Schemes = append(out.Schemes, recs...)
	}
	if len(out.Schemes) == 0 {
		out.GeneralAdvice = append(out.GeneralAdvice, noDetailsAdvice[lang])
	}
	out = out.EnsureSlices()
	r.log.Info("recommendation ready",
		zap.Int("names", len(names.SchemeNames)),
		zap.Int("batches", len(batches)),
		zap.Int("schemes", len(out.Schemes)))
	emit(ctx, Event{Kind: EventDone})
	return out, nil
}

func (r *Recommender) discover(ctx context.Context, p scheme.UserProfile) (scheme.NameList, error) {
	prompt, err := NameDiscoveryPrompt(p)
	if err != nil {
		return scheme.NameList{}, err
	}
	ctx = llm.WithPhase(ctx, llm.PhaseNames)
	var out scheme.NameList
	err = r.retry.Do(ctx, func(ctx context.Context) error {
		raw, err := r.client.Complete(ctx, llmclient.Factual(prompt))
		if err != nil {
			return err
		}
		out, err = parseNames(raw)
		return err
	})
	return out, err
}

func (r *Recommender) details(ctx context.Context, p scheme.UserProfile, batch []string) ([]scheme.Record, error) {
	prompt, err := SchemeDetailsPrompt(p, batch)
	if err != nil {
		return nil, err
	}
	ctx = llm.WithPhase(ctx, llm.PhaseDetails)
	var out []scheme.Record
	err = r.retry.Do(ctx, func(ctx context.Context) error {
		raw, err := r.client.Complete(ctx, llmclient.Factual(prompt))
		if err != nil {
			return err
		}
		recs, err := parseRecords(raw)
		if err != nil {
			return err
		}
		out = orderByNames(recs, batch)
		return nil
	})
	return out, err
}
