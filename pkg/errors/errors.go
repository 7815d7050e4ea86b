package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Usage errors
	ErrUsage ErrorCode = "USAGE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"
	ErrRuleInvalid ErrorCode = "RULE_INVALID"

	// Precondition errors
	ErrSourceNotFound  ErrorCode = "SOURCE_NOT_FOUND"
	ErrDestExists      ErrorCode = "DEST_EXISTS"
	ErrDirCreate       ErrorCode = "DIR_CREATE"
	ErrVersionInvalid  ErrorCode = "VERSION_INVALID"
	ErrPayloadNotFound ErrorCode = "PAYLOAD_NOT_FOUND"

	// Traversal errors
	ErrEnumerate ErrorCode = "ENUMERATE"

	// Copy errors
	ErrCopyFailed    ErrorCode = "COPY_FAILED"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
)

// KegError represents a structured error with code and details
type KegError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *KegError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *KegError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *KegError) Is(target error) bool {
	var targetErr *KegError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new KegError with the given code and message
func New(code ErrorCode, message string) *KegError {
	return &KegError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new KegError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *KegError {
	return &KegError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a KegError
func Wrap(err error, code ErrorCode, message string) *KegError {
	if err == nil {
		return nil
	}
	return &KegError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *KegError {
	if err == nil {
		return nil
	}
	return &KegError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *KegError) WithDetail(key string, value interface{}) *KegError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *KegError) WithDetails(details map[string]interface{}) *KegError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithStack records the current goroutine stack under the "stack" detail.
func (e *KegError) WithStack() *KegError {
	return e.WithDetail(DetailStack, string(debug.Stack()))
}

// DetailStack is the detail key holding a captured stack trace.
const DetailStack = "stack"

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var kegErr *KegError
	if errors.As(err, &kegErr) {
		return kegErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a KegError
func GetErrorCode(err error) ErrorCode {
	var kegErr *KegError
	if errors.As(err, &kegErr) {
		return kegErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a KegError
func GetErrorDetails(err error) map[string]interface{} {
	var kegErr *KegError
	if errors.As(err, &kegErr) {
		return kegErr.Details
	}
	return nil
}

// Exit codes returned by the kegpack binary.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitFailure = 2
)

// ExitCode maps an error to the process exit code. Usage errors exit with 1,
// every other failure with 2.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsErrorCode(err, ErrUsage) {
		return ExitUsage
	}
	return ExitFailure
}

// IsCopyFailure reports whether err aborted a copy in progress.
func IsCopyFailure(err error) bool {
	switch GetErrorCode(err) {
	case ErrCopyFailed, ErrSymlinkCreate, ErrFileWrite:
		return true
	}
	return false
}

// Is is errors.Is, re-exported so callers need a single errors import
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As, re-exported so callers need a single errors import
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
