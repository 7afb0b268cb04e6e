// Package domain defines core types, interfaces, and errors for the access broker.
package domain

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input from the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// GoogleAPIError indicates the cloud provider answered with a non-success
// status on a call whose outcome must not be guessed (see policy check 4).
type GoogleAPIError struct {
	Message string
	Status  int
}

func (e *GoogleAPIError) Error() string { return e.Message }

// ErrNotImplemented marks functionality with no backing implementation.
// Callers must surface it, never collapse it to an allow/deny default.
var ErrNotImplemented = errors.New("functionality not yet available")

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrGoogleAPI creates a GoogleAPIError carrying the provider status code.
func ErrGoogleAPI(status int, format string, args ...interface{}) *GoogleAPIError {
	return &GoogleAPIError{Message: fmt.Sprintf(format, args...), Status: status}
}
