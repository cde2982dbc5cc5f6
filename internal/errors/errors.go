// Package errors provides unified error handling with structured error codes.
package errors

import "fmt"

// Code classifies errors by origin and recoverability.
type Code int

const (
	CodeUnknown Code = iota
	CodeInternal
	CodeConfigInvalid
	CodeConfigMissing
	CodeRegionInvalid
	CodeCaptureFailed
	CodeActionUnknownKey
	CodeActionFailed
	CodeHotkeyInvalid
	CodeSnapshotFailed
)

var codeNames = map[Code]string{
	CodeUnknown:          "UNKNOWN",
	CodeInternal:         "INTERNAL",
	CodeConfigInvalid:    "CONFIG_INVALID",
	CodeConfigMissing:    "CONFIG_MISSING",
	CodeRegionInvalid:    "REGION_INVALID",
	CodeCaptureFailed:    "CAPTURE_FAILED",
	CodeActionUnknownKey: "ACTION_UNKNOWN_KEY",
	CodeActionFailed:     "ACTION_FAILED",
	CodeHotkeyInvalid:    "HOTKEY_INVALID",
	CodeSnapshotFailed:   "SNAPSHOT_FAILED",
}

// String returns the symbolic name of the code.
func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code Code) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// IsRetryable returns true if the error is potentially transient.
// Capture and action failures come and go with the desktop session;
// invalid regions, unknown keys and bad config do not fix themselves.
func IsRetryable(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return true
	}
	switch appErr.Code {
	case CodeCaptureFailed, CodeActionFailed, CodeInternal, CodeUnknown:
		return true
	default:
		return false
	}
}
