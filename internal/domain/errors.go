// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota // Input validation errors (400 Bad Request)
	ErrorTypeAuth                        // Token acquisition failures; fatal for the current tick or request
	ErrorTypeUpstream                    // Directory API call failures; isolated to the current item
	ErrorTypeNotFound                    // Expected field or resource absent; "not applicable yet", not a failure
	ErrorTypeStore                       // Registry read/write failures; the item's state is simply not advanced
	ErrorTypeStorage                     // Content write failures; safe to retry next tick
	ErrorTypeInternal                    // Everything else (500 Internal Server Error)
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewAuthError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeAuth, Message: message, Err: errors.Join(err...)}
}

func NewUpstreamError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUpstream, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewStoreError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeStore, Message: message, Err: errors.Join(err...)}
}

func NewStorageError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeStorage, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

// ErrServiceUnavailable is returned when a service is called before its
// dependencies are wired.
var ErrServiceUnavailable = errors.New("service unavailable")
