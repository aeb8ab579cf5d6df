// Package apperror defines the error categories surfaced to API clients.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is the machine-checkable category of an Error
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindInternal          Kind = "internal_error"
)

// InternalMessage is the only message clients see for internal failures.
const InternalMessage = "erro interno do servidor"

// Error wraps an underlying cause with a category and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

func NotFound(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

// InsufficientStock names the product whose stock cannot cover the request.
func InsufficientStock(productName string, requested, available int) *Error {
	return &Error{
		Kind: KindInsufficientStock,
		Message: fmt.Sprintf("estoque insuficiente para o produto %s (solicitado: %d, disponível: %d)",
			productName, requested, available),
	}
}

// Internal hides err behind the generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: InternalMessage, Err: err}
}

// KindOf returns the category of err; untyped errors are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// From returns err as an *Error, wrapping untyped errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
