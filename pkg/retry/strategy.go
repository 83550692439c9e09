package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/bert-labs/bert-staking-client/pkg/retry/backoff"
)

// Strategy determines whether an action should be retried after it failed
// with err on the given attempt. Strategies may delay.
type Strategy func(ctx context.Context, attempts uint, err error) bool

// Limit caps the total number of attempts. maxAttempts should be >= 1, since
// the action always runs once.
func Limit(maxAttempts uint) Strategy {
	return func(_ context.Context, attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries errors matching one of retriableErrors.
func RetriableErrors(retriableErrors ...error) Strategy {
	return func(_ context.Context, _ uint, err error) bool {
		for _, e := range retriableErrors {
			if errors.Is(err, e) {
				return true
			}
		}
		return false
	}
}

// RetriableFunc retries errors for which isRetriable returns true.
func RetriableFunc(isRetriable func(error) bool) Strategy {
	return func(_ context.Context, _ uint, err error) bool {
		return isRetriable(err)
	}
}

// Backoff delays the next attempt by the strategy's delay, capped at
// maxBackoff. It stops retrying if ctx is done while waiting.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return func(ctx context.Context, attempts uint, _ error) bool {
		return sleeperImpl.Sleep(ctx, capDelay(strategy(attempts), maxBackoff))
	}
}

// BackoffWithJitter is Backoff with the capped delay randomized by +/- jitter
// (a fraction of the delay). A capped delay of 100ms with a jitter of 0.1
// sleeps between 90ms and 110ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(ctx context.Context, attempts uint, _ error) bool {
		delay := capDelay(strategy(attempts), maxBackoff)
		delay = time.Duration(float64(delay) * (1 + (rand.Float64()*jitter*2 - jitter)))
		return sleeperImpl.Sleep(ctx, delay)
	}
}

func capDelay(delay, max time.Duration) time.Duration {
	if delay > max {
		return max
	}
	return delay
}

type sleeper interface {
	// Sleep waits for d and returns false if ctx finished first.
	Sleep(ctx context.Context, d time.Duration) bool
}

type realSleeper struct{}

func (r *realSleeper) Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

var sleeperImpl sleeper = &realSleeper{}
