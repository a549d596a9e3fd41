package recorder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"schemefinder/internal/gateway/repository/analytics"
	"schemefinder/internal/gateway/repository/history"
	"schemefinder/internal/metrics"
	"schemefinder/internal/scheme"
)

const (
	DefaultQueueSize = 256
	writeTimeout     = 5 * time.Second
	topSchemes       = 5
)

const (
	kindAnalytics = "analytics"
	kindHistory   = "history"
)

type job struct {
	kind string
	run  func(ctx context.Context) error
}

// Recorder persists analytics and history off the request path. Enqueueing never blocks:
// when the queue is full the event is dropped with a warning.
type Recorder struct {
	analytics analytics.Store
	history   history.Store
	log       *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan job
	done   chan struct{}
}

func New(a analytics.Store, h history.Store, log *zap.Logger, size int) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	if size <= 0 {
		size = DefaultQueueSize
	}
	r := &Recorder{
		analytics: a,
		history:   h,
		log:       log,
		queue:     make(chan job, size),
		done:      make(chan struct{}),
	}
	go r.loop()
	return r
}

// RecordRecommendation queues an analytics event and, when the profile carries a user id,
// a history entry.
func (r *Recorder) RecordRecommendation(p scheme.UserProfile, rec scheme.Recommendation) {
	if r == nil {
		return
	}
	names := make([]string, 0, topSchemes)
	for _, s := range rec.Schemes {
		if len(names) == topSchemes {
			break
		}
		names = append(names, s.Name)
	}
	now := time.Now().UTC()

	if r.analytics != nil {
		ev := analytics.Event{
			Profile: analytics.Profile{
				State:      p.State,
				Age:        string(p.Age),
				Occupation: p.Occupation,
				Income:     p.AnnualIncome,
				Category:   p.Category,
				Gender:     p.Gender,
			},
			SchemesFound: len(rec.Schemes),
			TopSchemes:   names,
			Timestamp:    now,
		}
		r.enqueue(job{kind: kindAnalytics, run: func(ctx context.Context) error { return r.analytics.Add(ctx, ev) }})
	}
	if r.history != nil && p.UserID != "" {
		entry := history.Entry{
			UserID:    p.UserID,
			Timestamp: now,
			Profile: history.Profile{
				State:      p.State,
				Age:        string(p.Age),
				Occupation: p.Occupation,
				Income:     p.AnnualIncome,
				Category:   p.Category,
			},
			SchemesFound: len(rec.Schemes),
			TopSchemes:   names,
		}
		r.enqueue(job{kind: kindHistory, run: func(ctx context.Context) error { return r.history.Add(ctx, entry) }})
	}
}

func (r *Recorder) enqueue(j job) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		metrics.RecorderEvents.WithLabelValues(j.kind, "dropped").Inc()
		return
	}
	select {
	case r.queue <- j:
	default:
		metrics.RecorderEvents.WithLabelValues(j.kind, "dropped").Inc()
		r.log.Warn("recorder queue full, dropping event", zap.String("kind", j.kind))
	}
}

func (r *Recorder) loop() {
	defer close(r.done)
	for j := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := j.run(ctx)
		cancel()
		if err != nil {
			metrics.RecorderEvents.WithLabelValues(j.kind, "failed").Inc()
			r.log.Error("recorder write failed", zap.String("kind", j.kind), zap.Error(err))
			continue
		}
		metrics.RecorderEvents.WithLabelValues(j.kind, "ok").Inc()
	}
}

// Close stops accepting events and waits until the queue is drained or ctx is done.
func (r *Recorder) Close(ctx context.Context) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
