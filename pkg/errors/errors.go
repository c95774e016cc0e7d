package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigDir   ErrorCode = "CONFIG_DIR"
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Rule file errors
	ErrRulesParse   ErrorCode = "RULES_PARSE"
	ErrRulesInvalid ErrorCode = "RULES_INVALID"
	ErrRulesFormat  ErrorCode = "RULES_FORMAT"

	// Clipboard errors
	ErrClipboardAcquire ErrorCode = "CLIPBOARD_ACQUIRE"
	ErrClipboardRead    ErrorCode = "CLIPBOARD_READ"
	ErrClipboardWrite   ErrorCode = "CLIPBOARD_WRITE"

	// Watch errors
	ErrWatchCreate       ErrorCode = "WATCH_CREATE"
	ErrWatchAdd          ErrorCode = "WATCH_ADD"
	ErrWatchDisconnected ErrorCode = "WATCH_DISCONNECTED"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileCreate ErrorCode = "FILE_CREATE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// ClipfmtError represents a structured error with code and details
type ClipfmtError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ClipfmtError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ClipfmtError) Unwrap() error {
	return e.Wrapped
}

// Is matches any ClipfmtError carrying the same code
func (e *ClipfmtError) Is(target error) bool {
	var targetErr *ClipfmtError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ClipfmtError with the given code and message
func New(code ErrorCode, message string) *ClipfmtError {
	return &ClipfmtError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ClipfmtError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ClipfmtError {
	return &ClipfmtError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ClipfmtError
func Wrap(err error, code ErrorCode, message string) *ClipfmtError {
	if err == nil {
		return nil
	}
	return &ClipfmtError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ClipfmtError {
	if err == nil {
		return nil
	}
	return &ClipfmtError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ClipfmtError) WithDetail(key string, value interface{}) *ClipfmtError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var clipErr *ClipfmtError
	if errors.As(err, &clipErr) {
		return clipErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ClipfmtError
func GetErrorCode(err error) ErrorCode {
	var clipErr *ClipfmtError
	if errors.As(err, &clipErr) {
		return clipErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a ClipfmtError
func GetErrorDetails(err error) map[string]interface{} {
	var clipErr *ClipfmtError
	if errors.As(err, &clipErr) {
		return clipErr.Details
	}
	return nil
}
