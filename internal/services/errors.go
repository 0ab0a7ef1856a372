package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/lecture-service/internal/auth"
	"github.com/SAP-F-2025/lecture-service/internal/repositories"
	"github.com/SAP-F-2025/lecture-service/internal/validator"
)

// Error kinds, matched with errors.Is against a *ServiceError
var (
	ErrNotFound         = errors.New("not found")
	ErrBadRequest       = errors.New("bad request")
	ErrValidationFailed = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
)

// ServiceError carries a client-facing message for one of the error kinds
type ServiceError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func NewServiceError(kind error, message string, cause error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Cause: cause}
}

func NotFound(message string) error {
	return NewServiceError(ErrNotFound, message, nil)
}

func BadRequest(message string) error {
	return NewServiceError(ErrBadRequest, message, nil)
}

func Forbidden(message string) error {
	return NewServiceError(ErrForbidden, message, nil)
}

func Unauthorized(message string) error {
	return NewServiceError(ErrUnauthorized, message, nil)
}

func Conflict(message string) error {
	return NewServiceError(ErrConflict, message, nil)
}

// ValidationFailed wraps validator output so handlers can render field details
func ValidationFailed(err error) error {
	return NewServiceError(ErrValidationFailed, "Validation failed.", err)
}

// ValidationDetails extracts the field errors of a validation failure
func ValidationDetails(err error) validator.ValidationErrors {
	var details validator.ValidationErrors
	if errors.As(err, &details) {
		return details
	}
	return nil
}

// fromPolicy converts an authorization decision into a service error
func fromPolicy(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrUnauthenticated):
		return NewServiceError(ErrUnauthorized, "Authentication required.", err)
	case errors.Is(err, auth.ErrForbidden):
		return NewServiceError(ErrForbidden, message, err)
	}
	return err
}

// notFoundOr maps a repository not-found onto a NotFound with message and wraps anything else
func notFoundOr(err error, message, op string) error {
	if repositories.IsNotFoundError(err) {
		return NewServiceError(ErrNotFound, message, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
