package buffer

import (
	stderrors "errors"
	"fmt"

	"github.com/c360/ringwindow/errors"
)

// Argument errors, matched by errors.Is against errors.ErrInvalidArgument as well.
var (
	ErrInvalidCapacity     = fmt.Errorf("%w: capacity must be greater than zero", errors.ErrInvalidArgument)
	ErrIndexOutOfRange     = fmt.Errorf("%w: index out of range", errors.ErrInvalidArgument)
	ErrDestinationTooSmall = fmt.Errorf("%w: destination too small", errors.ErrInvalidArgument)
)

// State errors, matched by errors.Is against errors.ErrInvalidOperation as well.
var (
	ErrBufferFull     = fmt.Errorf("%w: buffer full", errors.ErrInvalidOperation)
	ErrBufferEmpty    = fmt.Errorf("%w: buffer empty", errors.ErrInvalidOperation)
	ErrSourceTooLarge = fmt.Errorf("%w: source larger than capacity", errors.ErrInvalidOperation)
)

// ErrEvictionHandler marks an error returned by an eviction handler.
var ErrEvictionHandler = stderrors.New("eviction handler failed")

func handlerError(method string, errs ...error) error {
	joined := stderrors.Join(errs...)
	if joined == nil {
		return nil
	}
	return errors.Wrap(fmt.Errorf("%w: %w", ErrEvictionHandler, joined), "Ring", method, "notify eviction handlers")
}
