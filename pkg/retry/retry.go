package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/c360/ringwindow/errors"
)

// NonRetryableError wraps errors that should not be retried
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("non-retryable: %v", e.Err)
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// NonRetryable wraps an error to indicate it should not be retried
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryableError{Err: err}
}

// IsNonRetryable reports whether err should stop the retry loop: it was
// wrapped with NonRetryable, or it is classified invalid or fatal.
func IsNonRetryable(err error) bool {
	var nre *NonRetryableError
	if stderrors.As(err, &nre) {
		return true
	}

	var ce *errors.ClassifiedError
	if stderrors.As(err, &ce) {
		return ce.Class == errors.ErrorInvalid || ce.Class == errors.ErrorFatal
	}
	return false
}

// Config provides retry configuration
type Config struct {
	MaxAttempts  int           // Maximum number of attempts (0 = run once)
	InitialDelay time.Duration // Delay before the second attempt
	MaxDelay     time.Duration // Upper bound for any single delay
	Multiplier   float64       // Backoff multiplier (typically 2.0)
	AddJitter    bool          // Add up to 25% random delay

	// Logger receives a debug record before every backoff sleep. Optional.
	Logger *slog.Logger
}

// DefaultConfig returns defaults for normal operations
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// Quick returns a config for fast retries (useful during startup)
func Quick() Config {
	return Config{
		MaxAttempts:  10,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   1.5,
		AddJitter:    true,
	}
}

// Persistent returns a config for long-running retries (useful for critical resources)
func Persistent() Config {
	return Config{
		MaxAttempts:  30,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// normalize validates cfg and fills zero fields with defaults.
func (cfg Config) normalize() (Config, error) {
	switch {
	case cfg.InitialDelay < 0:
		return cfg, errors.WrapInvalid(errors.ErrInvalidConfig, "retry", "Do", "InitialDelay cannot be negative")
	case cfg.MaxDelay < 0:
		return cfg, errors.WrapInvalid(errors.ErrInvalidConfig, "retry", "Do", "MaxDelay cannot be negative")
	case cfg.Multiplier < 0:
		return cfg, errors.WrapInvalid(errors.ErrInvalidConfig, "retry", "Do", "Multiplier cannot be negative")
	}

	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	cfg.Multiplier = min(cfg.Multiplier, 1000)
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = 2.0
	}

	if cfg.MaxDelay < cfg.InitialDelay {
		return cfg, errors.WrapInvalid(errors.ErrInvalidConfig, "retry", "Do", "MaxDelay must be >= InitialDelay")
	}
	return cfg, nil
}

// next returns the delay following d, capped at MaxDelay.
func (cfg Config) next(d time.Duration) time.Duration {
	n := float64(d) * cfg.Multiplier
	if n > float64(cfg.MaxDelay) {
		return cfg.MaxDelay
	}
	return time.Duration(n)
}

func (cfg Config) jitter(d time.Duration) time.Duration {
	if !cfg.AddJitter || d < 4 {
		return d
	}
	return d + rand.N(d/4)
}

// Do executes fn with exponential backoff retry.
// It stops early on success, on a non-retryable error, or when ctx is done.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	cfg, err := cfg.normalize()
	if err != nil {
		return err
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if IsNonRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled before attempt %d: %w", attempt+1, ctx.Err())
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		sleep := cfg.jitter(delay)
		if cfg.Logger != nil {
			cfg.Logger.Debug("retrying after failure",
				"attempt", attempt,
				"max_attempts", cfg.MaxAttempts,
				"delay", sleep,
				"error", err)
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled during backoff for attempt %d: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}

		delay = cfg.next(delay)
	}

	return fmt.Errorf("retry failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// DoWithResult executes fn with retry and returns both result and error
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}
