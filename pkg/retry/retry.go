package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy describes a bounded exponential backoff. It wraps only the outbound
// platform collaborators; decision logic never retries.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultPolicy mirrors the platform clients' historical behaviour: three
// attempts with a 2s base delay doubling per attempt.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second, MaxDelay: 2 * time.Minute}
}

// Retryable classifies whether a failure is worth another attempt.
type Retryable func(error) bool

// Do runs fn until it succeeds, the attempts are exhausted, or the context is
// cancelled. The last error is returned when retries run out.
func (p Policy) Do(ctx context.Context, retryable Retryable, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.delay(base, attempt)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}

	return err
}

func (p Policy) delay(base time.Duration, attempt int) time.Duration {
	delay := base << uint(attempt-1)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter {
		delay += time.Duration(rand.Int63n(int64(base)))
	}
	return delay
}
