package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services.
var (
	ErrQuestionNotFound = errors.New("homework question not found")
	ErrAttemptNotFound  = errors.New("answer attempt not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyGraded    = errors.New("attempt already graded")
	// ErrConcurrentSubmission means another submission for the same
	// question landed first; the client should retry with fresh state.
	ErrConcurrentSubmission = errors.New("another submission for this question is in flight")
	ErrUnauthorized         = errors.New("unauthorized")
)

// ValidationError represents a single-field validation failure raised by
// a service rather than the request validator.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// PermissionError represents an authorization failure.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{UserID: userID, Resource: resource, Action: action, Reason: reason}
}

// IsValidationError reports whether err is a service validation error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPermissionError reports whether err is a permission error.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsNotFoundError reports whether err is one of the not-found sentinels.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
