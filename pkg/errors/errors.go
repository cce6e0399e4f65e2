package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// StatusCode maps the error code to an HTTP status
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	case ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrConflict
	ErrUnavailable
)

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// AuthErrorKind classifies identity provider failures
type AuthErrorKind string

const (
	EmailInUse         AuthErrorKind = "email_in_use"
	WeakPassword       AuthErrorKind = "weak_password"
	InvalidCredentials AuthErrorKind = "invalid_credentials"
	NetworkError       AuthErrorKind = "network_error"
	InvalidToken       AuthErrorKind = "invalid_token"
)

// AuthError is returned by the identity provider and passed to callers unchanged
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("auth: %s", e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) StatusCode() int {
	switch e.Kind {
	case EmailInUse:
		return http.StatusConflict
	case WeakPassword, InvalidToken:
		return http.StatusBadRequest
	case InvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusServiceUnavailable
	}
}

func NewAuthError(kind AuthErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

// IsAuthKind reports whether err is an AuthError of the given kind
func IsAuthKind(err error, kind AuthErrorKind) bool {
	var authErr *AuthError
	return stderrors.As(err, &authErr) && authErr.Kind == kind
}

// PersistenceErrorKind classifies gateway failures
type PersistenceErrorKind string

const (
	PersistenceNotFound PersistenceErrorKind = "not_found"
	WriteFailed         PersistenceErrorKind = "write_failed"
	PersistenceNetwork  PersistenceErrorKind = "network_error"
)

// PersistenceError wraps failures from the persistence gateway
type PersistenceError struct {
	Kind       PersistenceErrorKind
	Collection string
	ID         string
	Err        error
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("persistence: %s %s", e.Kind, e.Collection)
	if e.ID != "" {
		msg += "/" + e.ID
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) StatusCode() int {
	switch e.Kind {
	case PersistenceNotFound:
		return http.StatusNotFound
	case PersistenceNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func NewPersistenceError(kind PersistenceErrorKind, collection, id string, err error) *PersistenceError {
	return &PersistenceError{Kind: kind, Collection: collection, ID: id, Err: err}
}

// IsNotFound reports whether err is a persistence not-found error
func IsNotFound(err error) bool {
	var pErr *PersistenceError
	return stderrors.As(err, &pErr) && pErr.Kind == PersistenceNotFound
}
