// Package domain defines the core domain models for SyncBoard.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "SB-FILE-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Connection errors (CONN).
var (
	// ErrClientConflict indicates the client id is already registered.
	ErrClientConflict = NewDomainError("SB-CONN-4090", "client id already registered")

	// ErrClientNotFound indicates the client id is not registered.
	ErrClientNotFound = NewDomainError("SB-CONN-4040", "client not registered")

	// ErrSendFailed indicates a transport send to one client failed.
	// Treated as a disconnect signal for that client, never fatal.
	ErrSendFailed = NewDomainError("SB-CONN-5020", "send to client failed")
)

// Clipboard errors (CLIP).
var (
	// ErrStaleVersion indicates an optimistic concurrency conflict:
	// the submitted expected version no longer matches the board.
	// The loser must re-read the current state and resubmit.
	ErrStaleVersion = NewDomainError("SB-CLIP-4091", "stale clipboard version, re-read and retry")

	// ErrTextTooLarge indicates the submitted text exceeds the size cap.
	ErrTextTooLarge = NewDomainError("SB-CLIP-4130", "clipboard text too large")
)

// File errors (FILE).
var (
	// ErrFileNotFound indicates the requested file id is unknown.
	ErrFileNotFound = NewDomainError("SB-FILE-4040", "file not found")

	// ErrFileExpired indicates the file exists but its TTL has passed.
	ErrFileExpired = NewDomainError("SB-FILE-4041", "file expired")

	// ErrFileTooLarge indicates a single upload exceeds the size cap.
	ErrFileTooLarge = NewDomainError("SB-FILE-4130", "file too large")

	// ErrStorageFull indicates the aggregate in-memory storage cap
	// would be exceeded by accepting the upload.
	ErrStorageFull = NewDomainError("SB-FILE-5070", "file storage full")

	// ErrFileValidation indicates upload metadata validation failed.
	ErrFileValidation = NewDomainError("SB-FILE-4001", "file validation failed")
)

// System errors (SYS).
var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("SB-SYS-5000", "internal server error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("SB-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("SB-SYS-4290", "too many requests")
)
