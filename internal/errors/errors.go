package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// Code represents the category of a membank error, per the error taxonomy
// the Tool Dispatcher uses as its single translation point to the wire
// response envelope.
type Code int

const (
	// SessionUnbound - no active session, or session lacks required scope
	SessionUnbound Code = iota
	// SessionMismatch - call's repository/branch conflicts with the session
	SessionMismatch
	// InvalidArgument - schema, enum, or ID-prefix validation failure
	InvalidArgument
	// NotFound - referenced entity absent
	NotFound
	// Conflict - invariant violation (cross-branch edge, illegal transition)
	Conflict
	// EngineError - underlying graph engine failure
	EngineError
	// IoError - filesystem or transport failure
	IoError
	// Cancelled - caller aborted the request
	Cancelled
	// Internal - unexpected; indicates a bug
	Internal
)

// Error represents a structured error with context
type Error struct {
	Code       Code
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is checks if this error matches the target error's code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// DetailedString returns a detailed error message with context, for logs
func (e *Error) DetailedString() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", codeString(e.Code), e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}

	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
		}
	}

	if e.StackTrace != "" {
		sb.WriteString(fmt.Sprintf("Stack trace:\n%s\n", e.StackTrace))
	}

	return sb.String()
}

func codeString(c Code) string {
	switch c {
	case SessionUnbound:
		return "SESSION_UNBOUND"
	case SessionMismatch:
		return "SESSION_MISMATCH"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case NotFound:
		return "NOT_FOUND"
	case Conflict:
		return "CONFLICT"
	case EngineError:
		return "ENGINE_ERROR"
	case IoError:
		return "IO_ERROR"
	case Cancelled:
		return "CANCELLED"
	case Internal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// captureStackTrace captures the current stack trace
func captureStackTrace(skip int) string {
	var sb strings.Builder
	for i := skip; i < skip+10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			break
		}
		sb.WriteString(fmt.Sprintf("  %s:%d %s\n", file, line, fn.Name()))
	}
	return sb.String()
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a code and message. Returns nil if err
// is nil, so it is safe to call unconditionally around a fallible call.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:       code,
		Message:    message,
		Cause:      err,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code Code, format string, args ...interface{}) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// SessionUnboundError reports that no session is bound, or it lacks scope
func SessionUnboundError(message string) *Error {
	return New(SessionUnbound, message)
}

// InvalidArgumentError creates a validation error
func InvalidArgumentError(message string) *Error {
	return New(InvalidArgument, message)
}

// InvalidArgumentErrorf creates a validation error with formatting
func InvalidArgumentErrorf(format string, args ...interface{}) *Error {
	return Newf(InvalidArgument, format, args...)
}

// NotFoundError creates a not-found error
func NotFoundError(message string) *Error {
	return New(NotFound, message)
}

// ConflictError creates an invariant-violation error
func ConflictError(message string) *Error {
	return New(Conflict, message)
}

// EngineErrorWrap wraps a graph engine failure
func EngineErrorWrap(err error, message string) *Error {
	return Wrap(err, EngineError, message)
}

// IoErrorWrap wraps a filesystem/transport failure
func IoErrorWrap(err error, message string) *Error {
	return Wrap(err, IoError, message)
}

// CodeOf extracts the Code of err if it is (or wraps) a *Error, defaulting
// to Internal for anything else.
func CodeOf(err error) Code {
	if err == nil {
		return Internal
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return Internal
}

// IsCode reports whether err is a *Error carrying the given code.
func IsCode(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}
