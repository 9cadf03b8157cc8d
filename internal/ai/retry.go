package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/megharajeev28/resume-matcher/internal/utils"
)

// Backoff retries a remote call with exponentially growing pauses.
type Backoff struct {
	// Attempts is the total number of tries; values below one mean a single try.
	Attempts int
	// Base is the pause after the first failure, doubled after every further one.
	Base time.Duration
	// Wait pauses between attempts. Defaults to utils.WaitFor.
	Wait   func(ctx context.Context, d time.Duration) error
	Logger *zap.Logger
}

// Do calls call until it succeeds, attempts run out, or retryable rejects the error.
// The last error is returned unchanged.
func (b Backoff) Do(ctx context.Context, retryable func(error) bool, call func(ctx context.Context) error) error {
	attempts := b.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	wait := b.Wait
	if wait == nil {
		wait = utils.WaitFor
	}

	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := call(ctx)
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == attempts || IsCancellation(ctx, err) || !retryable(err) {
			break
		}

		delay := b.Base << (attempt - 1)
		logger.Warn("remote request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		if err := wait(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// IsCancellation reports whether err stems from the caller giving up.
func IsCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
