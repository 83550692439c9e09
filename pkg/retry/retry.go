package retry

import (
	"context"
)

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries the provided action.
type Retrier interface {
	Retry(ctx context.Context, action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier that retries actions based off of the provided
// strategies. With no strategies, the retrier retries until the action
// succeeds or the context is done.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(ctx context.Context, action Action) (uint, error) {
	return Retry(ctx, action, r.strategies...)
}

// Retry executes the action until it succeeds, one of the strategies rejects
// another attempt, or ctx is done. The last action error is returned in the
// latter two cases.
//
// Strategies run in order, so strategies that delay should be specified last.
func Retry(ctx context.Context, action Action, strategies ...Strategy) (uint, error) {
	for attempt := uint(1); ; attempt++ {
		err := action()
		if err == nil {
			return attempt, nil
		}

		if ctx.Err() != nil {
			return attempt, err
		}

		for _, s := range strategies {
			if !s(ctx, attempt, err) {
				return attempt, err
			}
		}
	}
}
