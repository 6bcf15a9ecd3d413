package errors

import (
	"errors"
	"net/http"
	"runtime"
	"strings"
)

// Error is an error carrying the HTTP status it maps to and, optionally,
// the store or driver error that caused it.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"` // cause, never serialized
	Stack   string `json:"stack,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements the errors.Wrapper interface
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCode creates a new error with code
func WithCode(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Stack:   captureStack(),
	}
}

// Wrap wraps an error with message
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    GetCode(err),
		Message: message,
		Err:     err,
		Stack:   captureStack(),
	}
}

// Validation reports missing or malformed input (400).
func Validation(message string) *Error {
	return WithCode(http.StatusBadRequest, message)
}

// Auth reports rejected credentials (401).
func Auth(message string) *Error {
	return WithCode(http.StatusUnauthorized, message)
}

// NotFound reports an unknown id or file (404).
func NotFound(message string) *Error {
	return WithCode(http.StatusNotFound, message)
}

// StoreUnavailable reports that no connection to the store could be opened.
// The driver text stays in the cause only.
func StoreUnavailable(err error) *Error {
	if err == nil {
		return WithCode(http.StatusInternalServerError, "database connection error")
	}
	return withCode(Wrap(err, "database connection error"), http.StatusInternalServerError)
}

// Store reports a failed statement. Reads map to 500; inserts map constraint
// violations to 400 and expose the store text.
func Store(err error, code int) *Error {
	if err == nil {
		return nil
	}
	return withCode(Wrap(err, "database error: "+err.Error()), code)
}

// Unexpected wraps anything that fell through the other categories.
func Unexpected(err error) *Error {
	if err == nil {
		return nil
	}
	return withCode(Wrap(err, "unexpected error: "+err.Error()), http.StatusInternalServerError)
}

func withCode(e *Error, code int) *Error {
	e.Code = code
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	buf := make([]byte, 1024)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	// drop the goroutine header plus captureStack and its constructor
	lines := strings.Split(stack, "\n")
	if len(lines) > 6 {
		stack = strings.Join(lines[6:], "\n")
	}

	return strings.TrimSpace(stack)
}

// GetCode returns the HTTP status of the first coded error in the chain,
// or 0 when none carries one.
func GetCode(err error) int {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return 0
		}
		if e.Code != 0 {
			return e.Code
		}
		err = e.Err
	}
	return 0
}

// GetMessage returns the error message
func GetMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// GetStack returns the error stack trace
func GetStack(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stack
	}
	return ""
}

// Cause returns the underlying error
func Cause(err error) error {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Err != nil {
			err = e.Err
		} else {
			return err
		}
	}
	return err
}
