package classifier

import (
	"context"
	"errors"
)

// inputError marks a payload that could not be decoded or resized to the
// variant's input shape.
type inputError struct{ err error }

func (e inputError) Error() string { return "input error: " + e.err.Error() }
func (e inputError) Unwrap() error { return e.err }

// IsInputError reports whether err is an INPUT_ERROR (return 400).
func IsInputError(err error) bool {
	var e inputError
	return errors.As(err, &e)
}

// engineFaultError wraps an unexpected failure of the prediction call,
// including recovered panics.
type engineFaultError struct{ err error }

func (e engineFaultError) Error() string { return "engine fault: " + e.err.Error() }
func (e engineFaultError) Unwrap() error { return e.err }

// IsEngineFault reports whether err is an ENGINE_FAULT.
func IsEngineFault(err error) bool {
	var e engineFaultError
	return errors.As(err, &e)
}

// timeoutError is returned when a caller stops waiting before its reply arrives.
type timeoutError struct{ cause error }

func (e timeoutError) Error() string {
	if e.cause == nil {
		return "timed out waiting for prediction"
	}
	return "timed out waiting for prediction: " + e.cause.Error()
}
func (e timeoutError) Unwrap() error { return e.cause }

// IsTimeout reports whether err indicates the reply deadline elapsed (return 504).
func IsTimeout(err error) bool {
	var e timeoutError
	return errors.As(err, &e)
}

// tooBusyError signals admission rejection for 429 mapping.
type tooBusyError struct{ reason string }

func (e tooBusyError) Error() string { return "too busy: " + e.reason }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// ErrClosed is returned once the request channel stops admitting work.
var ErrClosed = errors.New("classifier closed")

// IsClosed reports whether err indicates shutdown (return 503).
func IsClosed(err error) bool { return errors.Is(err, ErrClosed) }

// startupFaultError wraps failures while loading engines. There is no degraded
// mode; callers should exit.
type startupFaultError struct{ err error }

func (e startupFaultError) Error() string { return "startup fault: " + e.err.Error() }
func (e startupFaultError) Unwrap() error { return e.err }

// IsStartupFault reports whether err happened while constructing the classifier.
func IsStartupFault(err error) bool {
	var e startupFaultError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing runtime (e.g., onnxruntime not
// built in) so the HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// Kind returns a stable label for err, used in logs, metrics and JSON errors.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsInputError(err):
		return "input_error"
	case IsEngineFault(err):
		return "engine_fault"
	case IsTooBusy(err):
		return "too_busy"
	case IsClosed(err):
		return "closed"
	case IsTimeout(err) && errors.Is(err, context.Canceled):
		return "canceled"
	case IsTimeout(err):
		return "timeout"
	case IsStartupFault(err):
		return "startup_fault"
	case IsDependencyUnavailable(err):
		return "dependency_unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}
