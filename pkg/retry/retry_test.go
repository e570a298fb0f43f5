package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ringwindow/errors"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		Multiplier:   2.0,
		AddJitter:    false, // Disable for predictable tests
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(t.Context(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return stderrors.New("transient error")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_AllAttemptsFail(t *testing.T) {
	cause := stderrors.New("persistent error")
	attempts := 0
	err := Do(t.Context(), fastConfig(3), func() error {
		attempts++
		return cause
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"wrapped", NonRetryable(stderrors.New("bad credentials"))},
		{"classified invalid", errors.WrapInvalid(errors.ErrInvalidData, "test", "op", "decode")},
		{"classified fatal", errors.WrapFatal(errors.ErrInvalidConfig, "test", "op", "load")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Do(t.Context(), fastConfig(5), func() error {
				attempts++
				return tt.err
			})
			assert.Equal(t, 1, attempts)
			assert.Same(t, tt.err, err)
		})
	}
}

func TestDo_RetriesClassifiedTransient(t *testing.T) {
	attempts := 0
	err := Do(t.Context(), fastConfig(2), func() error {
		attempts++
		return errors.WrapTransient(errors.ErrNotConnected, "test", "op", "connect")
	})
	require.Error(t, err)
	assert.Equal(t, 2, attempts)
	assert.ErrorIs(t, err, errors.ErrNotConnected)
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cfg := Config{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	attempts := 0
	err := Do(ctx, cfg, func() error {
		attempts++
		return stderrors.New("error")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "retry cancelled")
	assert.Less(t, attempts, 5)
}

func TestDo_BackoffTiming(t *testing.T) {
	cfg := fastConfig(4)
	start := time.Now()

	_ = Do(t.Context(), cfg, func() error {
		return stderrors.New("error")
	})

	// 5ms + 10ms + 20ms
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestConfig_Next(t *testing.T) {
	cfg := Config{MaxDelay: 25 * time.Millisecond, Multiplier: 10}
	assert.Equal(t, 25*time.Millisecond, cfg.next(10*time.Millisecond))

	cfg = Config{MaxDelay: time.Second, Multiplier: 2}
	assert.Equal(t, 20*time.Millisecond, cfg.next(10*time.Millisecond))
}

func TestConfig_Jitter(t *testing.T) {
	cfg := Config{AddJitter: true}
	for range 100 {
		d := cfg.jitter(100 * time.Millisecond)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 125*time.Millisecond)
	}
	assert.Equal(t, time.Second, Config{}.jitter(time.Second))
}

func TestConfig_Validation(t *testing.T) {
	tests := []Config{
		{InitialDelay: -1},
		{MaxDelay: -1},
		{Multiplier: -1},
		{InitialDelay: time.Second, MaxDelay: time.Millisecond},
	}
	for i, cfg := range tests {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			called := false
			err := Do(t.Context(), cfg, func() error {
				called = true
				return nil
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
			assert.False(t, called)
		})
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	err := Do(t.Context(), Config{}, func() error {
		attempts++
		return stderrors.New("error")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(t.Context(), fastConfig(3), func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", stderrors.New("not yet")
		}
		return "connected", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "connected", got)
	assert.Equal(t, 2, attempts)
}

func TestPresets(t *testing.T) {
	for name, cfg := range map[string]Config{
		"default":    DefaultConfig(),
		"quick":      Quick(),
		"persistent": Persistent(),
	} {
		normalized, err := cfg.normalize()
		require.NoError(t, err, name)
		assert.Equal(t, cfg.MaxAttempts, normalized.MaxAttempts, name)
		assert.True(t, cfg.AddJitter, name)
	}
	assert.Equal(t, 3, DefaultConfig().MaxAttempts)
	assert.Equal(t, 10, Quick().MaxAttempts)
	assert.Equal(t, 30, Persistent().MaxAttempts)
}

func ExampleDo() {
	attempts := 0
	err := Do(context.Background(), Config{MaxAttempts: 3, InitialDelay: time.Millisecond}, func() error {
		attempts++
		if attempts < 2 {
			return stderrors.New("connection refused")
		}
		return nil
	})
	fmt.Println(attempts, err)
	// Output: 2 <nil>
}
