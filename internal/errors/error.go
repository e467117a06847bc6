package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// DndError is a structured error with a code, an explanation and a fix hint.
type DndError struct {
	// Code is a unique error identifier (e.g., "E020").
	Code string

	// Category is the error type (runtime, protocol, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *DndError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *DndError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *DndError) WithDetail(d string) *DndError {
	e.Detail = d
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *DndError) WithSuggestion(s string) *DndError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *DndError) Wrap(err error) *DndError {
	e.Wrapped = err
	return e
}

// Is reports whether target carries the same code.
func (e *DndError) Is(target error) bool {
	t, ok := target.(*DndError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// New creates a DndError from a registered error code.
func New(code string) *DndError {
	template, ok := registry[code]
	if !ok {
		return &DndError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &DndError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new DndError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *DndError {
	return &DndError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a DndError.
func FromError(err error, code string) *DndError {
	if err == nil {
		return nil
	}
	if de, ok := err.(*DndError); ok {
		return de
	}
	return New(code).Wrap(err)
}
