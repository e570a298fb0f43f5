// Package retry provides exponential backoff retry for transient failures.
//
// # Overview
//
// Do runs a function until it succeeds, the attempt budget is spent, the context
// is done, or the function returns an error that must not be retried. Errors
// wrapped with NonRetryable stop the loop immediately, as do errors classified
// invalid or fatal by the errors package:
//
//	err := retry.Do(ctx, retry.Quick(), func() error {
//	    return client.connectOnce(ctx)
//	})
//
// # Configuration Presets
//
//   - DefaultConfig(): 3 attempts, 100ms-5s delay (normal operations)
//   - Quick(): 10 attempts, 50ms-1s delay (startup connections)
//   - Persistent(): 30 attempts, 200ms-10s delay (critical resources)
//
// Custom configuration:
//
//	cfg := retry.Config{
//	    MaxAttempts:  5,
//	    InitialDelay: 200 * time.Millisecond,
//	    MaxDelay:     10 * time.Second,
//	    Multiplier:   2.0,
//	    AddJitter:    true,
//	    Logger:       logger,
//	}
//
// # Context Cancellation
//
// Cancellation is checked after every failed attempt and interrupts a backoff sleep.
package retry
