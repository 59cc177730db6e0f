// Package errors provides standardized error handling patterns for
// travelstreams call engines. It includes error classification, standard
// error variables, and helper functions for consistent error wrapping
// across the system.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorUnavailable represents a required collaborator (usually the
	// catalog) not being initialized; fatal to the call, not retried
	ErrorUnavailable ErrorClass = iota
	// ErrorAborted represents a streaming call terminated by the client
	// or transport before a meaningful terminal state
	ErrorAborted
	// ErrorInvalid represents errors due to malformed criteria or items
	// at the engine boundary
	ErrorInvalid
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorUnavailable:
		return "unavailable"
	case ErrorAborted:
		return "aborted"
	case ErrorInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Service lifecycle errors
	ErrAlreadyStarted = errors.New("service already started")
	ErrNotStarted     = errors.New("service not started")
	ErrShuttingDown   = errors.New("service is shutting down")

	// Catalog errors
	ErrCatalogUnavailable = errors.New("catalog not initialized")
	ErrFlightNotFound     = errors.New("flight not found")

	// Stream errors
	ErrStreamAborted = errors.New("stream aborted by client")
	ErrStreamClosed  = errors.New("stream closed")

	// Validation errors
	ErrInvalidCriteria = errors.New("invalid query criteria")
	ErrInvalidItem     = errors.New("invalid cart item")
	ErrInvalidMessage  = errors.New("invalid chat message")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsUnavailable checks if an error means a required collaborator is down
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorUnavailable
	}

	return errors.Is(err, ErrCatalogUnavailable) ||
		errors.Is(err, ErrNotStarted) ||
		errors.Is(err, ErrShuttingDown)
}

// IsAborted checks if an error is a client- or transport-initiated abort.
// Context cancellation is an abort: the caller went away mid-call.
func IsAborted(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorAborted
	}

	return errors.Is(err, ErrStreamAborted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// IsInvalid checks if an error is due to malformed input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrInvalidCriteria) ||
		errors.Is(err, ErrInvalidItem) ||
		errors.Is(err, ErrInvalidMessage) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if IsInvalid(err) {
		return ErrorInvalid
	}
	if IsAborted(err) {
		return ErrorAborted
	}
	// Unknown errors surface as service-level failures
	return ErrorUnavailable
}

// newClassified creates a new classified error
// This is an internal helper - use WrapUnavailable(), WrapAborted(), or WrapInvalid() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapUnavailable wraps an error as unavailable with context
func WrapUnavailable(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorUnavailable, wrappedErr, component, method, wrappedErr.Error())
}

// WrapAborted wraps an error as aborted with context
func WrapAborted(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorAborted, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}
