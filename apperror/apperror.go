// Package apperror defines the errors handlers hand back to response.Handle.
// The failure envelope (`{statusCode, message, success: false, errors: []}`) and the
// HTTP status are derived from an AppError's Kind; everything else becomes a 500.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError and decides its HTTP status.
type Kind int

const (
	KindUnknown Kind = iota
	KindDatabase
	KindAuth      // missing/invalid token, bad credentials
	KindForbidden // authenticated, but not the owner
	KindNotFound
	KindValidation
	KindBadRequest
	KindMethodNotAllowed
	KindInternal
	KindExternalService // media host
	KindMigration
	KindConflict
)

var statusByKind = map[Kind]int{
	KindDatabase:         http.StatusInternalServerError,
	KindAuth:             http.StatusUnauthorized,
	KindForbidden:        http.StatusForbidden,
	KindNotFound:         http.StatusNotFound,
	KindValidation:       http.StatusBadRequest,
	KindBadRequest:       http.StatusBadRequest,
	KindMethodNotAllowed: http.StatusMethodNotAllowed,
	KindInternal:         http.StatusInternalServerError,
	KindExternalService:  http.StatusBadGateway,
	KindMigration:        http.StatusInternalServerError,
	KindConflict:         http.StatusConflict,
}

// AppError carries a client-facing Message (and optional Details) next to the
// underlying Err, which is only ever logged.
type AppError struct {
	Kind    Kind
	Message string
	Details []string // rendered as `errors`
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

// StatusCode maps the error's Kind to an HTTP status; unknown kinds are 500.
func (e *AppError) StatusCode() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithDetails appends client-visible detail lines and returns e.
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = append(e.Details, details...)
	return e
}

// New builds an AppError of the given kind.
func New(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: cause}
}

func NewDatabaseError(message string, cause error) *AppError {
	return New(KindDatabase, message, cause)
}

// NewAuthError is a 401.
func NewAuthError(message string, cause error) *AppError {
	return New(KindAuth, message, cause)
}

// NewForbiddenError is a 403.
func NewForbiddenError(message string, cause error) *AppError {
	return New(KindForbidden, message, cause)
}

func NewNotFoundError(message string, cause error) *AppError {
	return New(KindNotFound, message, cause)
}

func NewValidationError(message string, cause error) *AppError {
	return New(KindValidation, message, cause)
}

func NewBadRequestError(message string, cause error) *AppError {
	return New(KindBadRequest, message, cause)
}

func NewInternalError(message string, cause error) *AppError {
	return New(KindInternal, message, cause)
}

// NewExternalServiceError is a 502, used when the media host fails.
func NewExternalServiceError(message string, cause error) *AppError {
	return New(KindExternalService, message, cause)
}

func NewMigrationError(message string, cause error) *AppError {
	return New(KindMigration, message, cause)
}

// NewConflictError is a 409, e.g. a taken username or email.
func NewConflictError(message string, cause error) *AppError {
	return New(KindConflict, message, cause)
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode" example:"404"`
	Message    string   `json:"message" example:"Video not found"`
	Success    bool     `json:"success" example:"false"`
	Errors     []string `json:"errors"`
}

// ToResponse renders the envelope. Err is never included.
func (e *AppError) ToResponse() ErrorResponse {
	details := e.Details
	if details == nil {
		details = []string{}
	}
	return ErrorResponse{
		StatusCode: e.StatusCode(),
		Message:    e.Message,
		Success:    false,
		Errors:     details,
	}
}

// FromError finds the first *AppError in err's wrap chain.
func FromError(err error) (*AppError, bool) {
	var ae *AppError
	if err == nil || !errors.As(err, &ae) {
		return nil, false
	}
	return ae, true
}

// Is reports whether err's chain holds an AppError of the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := FromError(err)
	return ok && ae.Kind == kind
}
