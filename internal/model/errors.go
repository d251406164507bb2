package model

import (
	"errors"
	"fmt"
)

type ValidationReason string

const (
	ValidationEmpty    ValidationReason = "empty"
	ValidationTooLong  ValidationReason = "too_long"
	ValidationCategory ValidationReason = "category"
)

// ValidationError is returned when a task cannot be created from user input.
// Errors with the same Reason match under errors.Is.
type ValidationError struct {
	Reason ValidationReason
	Value  string
	Length int
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ValidationEmpty:
		return "task text is empty"
	case ValidationTooLong:
		return fmt.Sprintf("task text is too long: %d characters, max %d", e.Length, MaxTaskTextLength)
	case ValidationCategory:
		return fmt.Sprintf("unknown category %q", e.Value)
	default:
		return fmt.Sprintf("invalid task: %s", e.Reason)
	}
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Reason == e.Reason
}

var (
	ErrTextEmpty       = &ValidationError{Reason: ValidationEmpty}
	ErrTextTooLong     = &ValidationError{Reason: ValidationTooLong}
	ErrUnknownCategory = &ValidationError{Reason: ValidationCategory}
)

// ParseError means a stored task collection could not be decoded.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("could not parse tasks: %s", e.Err)
	}
	return fmt.Sprintf("could not parse tasks from %q: %s", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var ErrTaskNotFound = errors.New("task not found")
