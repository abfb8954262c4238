package process

import (
	"context"
	"time"

	"github.com/rogpeppe/retry"
)

// RetryStrategy returns a strategy that waits delay between attempts and
// gives up after maxAttempts attempts. Zero maxAttempts retries until
// the context is cancelled.
func RetryStrategy(delay time.Duration, maxAttempts int) retry.Strategy {
	return retry.Strategy{
		Delay:    delay,
		MaxDelay: delay,
		MaxCount: maxAttempts,
	}
}

// Retry calls attempt until it succeeds, the strategy is exhausted or ctx
// is done. The first attempt is made immediately; later ones wait for the
// strategy delay. It returns the number of attempts made. onFailure, if
// non-nil, is called after every failed attempt.
func Retry(ctx context.Context, strategy retry.Strategy, attempt func() error, onFailure func(n int, err error)) (int, error) {
	n := 0
	var lastErr error
	for i := strategy.Start(); ; {
		n++
		lastErr = attempt()
		if lastErr == nil {
			return n, nil
		}
		if onFailure != nil {
			onFailure(n, lastErr)
		}
		if ctx.Err() != nil || !i.Next(ctx.Done()) {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return n, err
	}
	if lastErr != nil {
		return n, &retryError{last: lastErr}
	}
	return n, ErrRetriesExhausted
}

type retryError struct {
	last error
}

func (e *retryError) Error() string {
	return ErrRetriesExhausted.Error() + ": " + e.last.Error()
}

func (e *retryError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

func (e *retryError) Unwrap() error {
	return e.last
}
