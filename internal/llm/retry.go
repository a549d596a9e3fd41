package llm

import (
	"context"
	"time"

	llmclient "schemefinder/internal/llmClient"
)

const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
	// maxHintedWait bounds how long a provider's retry-after hint may stretch one delay.
	maxHintedWait = 10 * time.Second
)

// RetryPolicy is a bounded retry with an injectable backoff and sleeper.
// The zero value performs a single attempt.
type RetryPolicy struct {
	// MaxAttempts counts the first try. Values below 1 mean 1.
	MaxAttempts int
	// Backoff returns the delay after the given failed attempt (1-based).
	Backoff func(attempt int, err error) time.Duration
	// Sleep waits for d or until ctx is done. Tests replace it to avoid real delays.
	Sleep func(ctx context.Context, d time.Duration) error
	// Retryable decides whether err is worth another attempt. Defaults to "not permanent".
	Retryable func(err error) bool
	// OnRetry is called before each sleep.
	OnRetry func(ctx context.Context, attempt int, wait time.Duration, err error)
}

// DefaultRetryPolicy makes 3 attempts with a fixed 1s delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultRetryAttempts,
		Backoff:     FixedBackoff(DefaultRetryDelay),
	}
}

// FixedBackoff waits d between attempts. A provider retry-after hint longer than d
// (up to 10s) replaces it.
func FixedBackoff(d time.Duration) func(int, error) time.Duration {
	return func(_ int, err error) time.Duration {
		if w, ok := llmclient.RetryAfter(err); ok && w > d && w <= maxHintedWait {
			return w
		}
		return d
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempts are used up,
// or ctx is done. The error of the last attempt is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	max := p.MaxAttempts
	if max < 1 {
		max = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = func(err error) bool { return !llmclient.IsPermanent(err) }
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var err error
	for attempt := 1; attempt <= max; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			if err != nil {
				return err
			}
			return cerr
		}
		err = fn(withAttempt(ctx, attempt))
		if err == nil {
			return nil
		}
		if attempt == max || ctx.Err() != nil || !retryable(err) {
			return err
		}
		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt, err)
		}
		if p.OnRetry != nil {
			p.OnRetry(ctx, attempt, wait, err)
		}
		if wait > 0 {
			if serr := sleep(ctx, wait); serr != nil {
				return err
			}
		}
	}
	return err
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
