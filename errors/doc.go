// Package errors provides standardized error handling patterns for ringwindow components.
//
// # Overview
//
// Errors are sorted into three classes:
//
//   - Transient: the operation failed because of current state (an empty or full
//     ring, a dropped connection) and a later attempt may succeed
//   - Invalid: the caller supplied bad input (non-positive capacity, out-of-range
//     index, malformed payload); retrying the same call cannot help
//   - Fatal: unrecoverable conditions such as broken configuration
//
// The classification works with errors.Is and errors.As through the whole
// wrapping chain.
//
// # Argument and Operation Errors
//
// Two taxonomy sentinels sit at the root of data-structure errors:
//
//	ErrInvalidArgument  // bad input, always reported eagerly
//	ErrInvalidOperation // the call is not valid for the current state
//
// Packages define narrower sentinels on top of them:
//
//	var ErrBufferFull = fmt.Errorf("%w: buffer full", errors.ErrInvalidOperation)
//
// so a caller can match either the specific condition or the whole family.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the format:
//
//	"component.method: action failed: <cause>"
//
// Wrap adds context only; WrapTransient, WrapInvalid and WrapFatal also attach
// a class:
//
//	if err := ring.Enqueue(v); err != nil {
//	    return errors.WrapTransient(err, "Window", "Add", "enqueue sample")
//	}
//
// # Classification
//
//	switch errors.Classify(err) {
//	case errors.ErrorTransient:
//	    // back off and try again
//	case errors.ErrorInvalid:
//	    // reject the input
//	case errors.ErrorFatal:
//	    // stop
//	}
package errors
