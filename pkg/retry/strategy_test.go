package retry

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/bert-labs/bert-staking-client/pkg/retry/backoff"
)

func TestLimit(t *testing.T) {
	ctx := context.Background()
	strategy := Limit(2)

	assert.True(t, strategy(ctx, 1, errors.New("test")))
	assert.False(t, strategy(ctx, 2, errors.New("test")))

	attempts, err := Retry(ctx, func() error { return errors.New("test") }, Limit(2))
	assert.EqualError(t, err, "test")
	assert.Equal(t, uint(2), attempts)
}

func TestRetriableErrors(t *testing.T) {
	ctx := context.Background()
	retriable := []error{errors.New("a"), errors.New("b")}

	strategy := RetriableErrors(retriable...)
	for _, err := range retriable {
		assert.True(t, strategy(ctx, 1, err))
		assert.True(t, strategy(ctx, 1, errors.Wrap(err, "wrapped")))
	}
	assert.False(t, strategy(ctx, 1, errors.New("unexpected")))
}

func TestRetriableFunc(t *testing.T) {
	target := errors.New("target")
	strategy := RetriableFunc(func(err error) bool { return errors.Is(err, target) })

	assert.True(t, strategy(context.Background(), 1, errors.Wrap(target, "wrapped")))
	assert.False(t, strategy(context.Background(), 1, errors.New("other")))
}

func TestBackoff(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts
	defer func() { sleeperImpl = &realSleeper{} }()

	strategy := Backoff(backoff.BinaryExponential(200*time.Millisecond), 500*time.Millisecond)
	for i := uint(1); i <= 4; i++ {
		assert.True(t, strategy(context.Background(), i, errors.New("test")))
	}

	assert.Equal(t, []time.Duration{
		200 * time.Millisecond,
		400 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
	}, ts.sleepTimes)
}

func TestBackoffWithJitter(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts
	defer func() { sleeperImpl = &realSleeper{} }()

	delay := time.Millisecond
	strategy := BackoffWithJitter(backoff.Constant(delay), delay, 0.1)
	for i := 0; i < 10000; i++ {
		assert.True(t, strategy(context.Background(), 1, errors.New("test")))
	}

	for _, d := range ts.sleepTimes {
		assert.InDelta(t, float64(delay), float64(d), 0.1*float64(delay))
	}
	assert.InDelta(t, float64(delay), float64(ts.Mean()), 0.01*float64(delay))
}

func TestBackoff_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	strategy := Backoff(backoff.Constant(time.Minute), time.Minute)
	assert.False(t, strategy(ctx, 1, errors.New("test")))
	assert.True(t, time.Since(start) < time.Second)
}

type testSleeper struct {
	sleepTimes []time.Duration
}

func (t *testSleeper) Sleep(ctx context.Context, d time.Duration) bool {
	t.sleepTimes = append(t.sleepTimes, d)
	return ctx.Err() == nil
}

func (t *testSleeper) Mean() time.Duration {
	var total float64
	for _, d := range t.sleepTimes {
		total += float64(d)
	}
	return time.Duration(math.Round(total / float64(len(t.sleepTimes))))
}
