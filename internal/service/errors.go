package service

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeResourceUnavailable = "RESOURCE_UNAVAILABLE"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeNotPending          = "NOT_PENDING"
	CodeDuplicateEntry      = "DUPLICATE_ENTRY"
	CodeProtectedAccount    = "PROTECTED_ACCOUNT"
	CodeValidation          = "VALIDATION_ERROR"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
)

// AppError is the error type every Marketplace operation returns.  Two
// AppErrors match under errors.Is when their codes are equal.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound            = &AppError{Code: CodeNotFound}
	ErrResourceUnavailable = &AppError{Code: CodeResourceUnavailable}
	ErrUnauthorized        = &AppError{Code: CodeUnauthorized}
	ErrUnauthenticated     = &AppError{Code: CodeUnauthenticated}
	ErrNotPending          = &AppError{Code: CodeNotPending}
	ErrDuplicateEntry      = &AppError{Code: CodeDuplicateEntry}
	ErrProtectedAccount    = &AppError{Code: CodeProtectedAccount}
	ErrValidation          = &AppError{Code: CodeValidation}
	ErrConflict            = &AppError{Code: CodeConflict}
	ErrInternal            = &AppError{Code: CodeInternal}
)

func NewNotFoundError(what string, id any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", what, id),
	}
}

func NewResourceUnavailableError(resourceID uint64) *AppError {
	return &AppError{
		Code:    CodeResourceUnavailable,
		Message: fmt.Sprintf("resource %d is not available", resourceID),
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

func NewUnauthenticatedError(message string) *AppError {
	return &AppError{Code: CodeUnauthenticated, Message: message}
}

func NewNotPendingError(requestID uint64, status any) *AppError {
	return &AppError{
		Code:    CodeNotPending,
		Message: fmt.Sprintf("request %d is %v, not pending", requestID, status),
	}
}

func NewDuplicateEntryError(message string) *AppError {
	return &AppError{Code: CodeDuplicateEntry, Message: message}
}

func NewProtectedAccountError() *AppError {
	return &AppError{Code: CodeProtectedAccount, Message: "the seeded admin account cannot be deleted"}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// wrap passes AppErrors through and hides anything else behind an
// internal error.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return NewInternalError(err)
}
