// Package retry provides a small parametrized retry/backoff policy.
package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Policy bounds repeated attempts with exponential backoff. The zero value
// is not usable; start from Default or fill every field.
type Policy struct {
	// MaxAttempts is the total attempt budget, first try included
	MaxAttempts int
	// BaseDelay is the wait after the first failed attempt
	BaseDelay time.Duration
	// Multiplier scales the delay after each subsequent failure
	Multiplier float64

	// Sleep is swapped out in tests; nil means time.Sleep
	Sleep func(time.Duration)
}

// Default returns the standard conversion policy: 3 attempts, 2s base delay,
// doubling each retry
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2,
	}
}

// Validate checks the policy parameters
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return errors.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay < 0 {
		return errors.Errorf("base delay must not be negative")
	}
	if p.Multiplier < 1 {
		return errors.Errorf("multiplier must be at least 1, got %v", p.Multiplier)
	}
	return nil
}

// Do runs fn until it succeeds or the attempt budget is exhausted, sleeping
// between attempts. The last error is returned wrapped with the attempt
// count.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.Validate(); err != nil {
		return errors.Errorf("invalid retry policy: %w", err)
	}

	logger := zerolog.Ctx(ctx)
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	delay := p.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		logger.Warn().
			Int("attempt", attempt).
			Int("max_attempts", p.MaxAttempts).
			Err(lastErr).
			Msg("attempt failed")

		if attempt < p.MaxAttempts {
			logger.Debug().Dur("delay", delay).Msg("backing off before retry")
			sleep(delay)
			delay = time.Duration(float64(delay) * p.Multiplier)
		}
	}

	return errors.Errorf("all %d attempts failed: %w", p.MaxAttempts, lastErr)
}
