// Package backoff provides delay schedules for retry.
package backoff

import (
	"math"
	"time"
)

// Strategy returns how long to wait before the next attempt. Attempts start
// at 1.
type Strategy func(attempts uint) time.Duration

// Constant always waits interval.
func Constant(interval time.Duration) Strategy {
	return func(uint) time.Duration {
		return interval
	}
}

// Exponential waits baseDelay * base^(attempts - 1).
//
// Ex. Exponential(2*time.Second, 3) = 2s, 6s, 18s, 54s, ...
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		return clamp(float64(baseDelay) * math.Pow(base, float64(attempts-1)))
	}
}

// BinaryExponential is Exponential with a base of 2.
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}

func clamp(delay float64) time.Duration {
	if delay < 0 || delay >= math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(delay)
}
