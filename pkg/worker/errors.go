package worker

import (
	stderrors "errors"
	"fmt"

	"github.com/c360/ringwindow/errors"
)

// Sentinel errors for worker pool operations
var (
	// ErrPoolNotStarted indicates the pool hasn't been started yet
	ErrPoolNotStarted = fmt.Errorf("%w: worker pool not started", errors.ErrNotStarted)

	// ErrPoolStopped indicates the pool has been stopped
	ErrPoolStopped = fmt.Errorf("%w: worker pool stopped", errors.ErrShuttingDown)

	// ErrPoolAlreadyStarted indicates Start() was called on an already-started pool
	ErrPoolAlreadyStarted = fmt.Errorf("%w: worker pool", errors.ErrAlreadyStarted)

	// ErrQueueFull indicates the work queue is at capacity
	ErrQueueFull = fmt.Errorf("%w: worker pool queue full", errors.ErrResourceExhausted)

	// ErrNilProcessor indicates a nil processor function was provided
	ErrNilProcessor = fmt.Errorf("%w: processor function cannot be nil", errors.ErrInvalidArgument)

	// ErrStopTimeout indicates the pool didn't stop within the timeout
	ErrStopTimeout = stderrors.New("timeout waiting for workers to stop")
)
