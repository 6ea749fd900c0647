package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes form a closed tag set; callers discriminate on Code, never on
// message text.
const (
	CodeMissingField       = "MISSING_FIELD"
	CodeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewMissingField flags an absent required field.
func NewMissingField(message string) error {
	return NewDomainError(CodeMissingField, message, http.StatusBadRequest, nil)
}

// NewDuplicateIdentity flags an already-registered subject.
func NewDuplicateIdentity(message string) error {
	return NewDomainError(CodeDuplicateIdentity, message, http.StatusBadRequest, nil)
}

// NewInvalidCredentials reports a failed login. The message never reveals
// whether the subject or the secret was wrong.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "Invalid email or password.", http.StatusUnauthorized, nil)
}

// NewUnauthenticated reports a request that reached a protected route with
// no security context.
func NewUnauthenticated(message string) error {
	return NewDomainError(CodeUnauthenticated, message, http.StatusUnauthorized, nil)
}

// NewAccessDenied reports an authenticated caller lacking the required role.
func NewAccessDenied(message string) error {
	return NewDomainError(CodeAccessDenied, message, http.StatusForbidden, nil)
}

// NewNotFound reports an absent resource.
func NewNotFound(resource string) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

// NewConflict reports a state collision such as a duplicate role name.
func NewConflict(message string) error {
	return NewDomainError(CodeConflict, message, http.StatusBadRequest, nil)
}

// NewServiceUnavailable reports a collaborator failure.
func NewServiceUnavailable(err error) error {
	return &DomainError{
		Code:       CodeServiceUnavailable,
		Message:    "service temporarily unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewInternalError wraps an unclassified failure behind a generic message.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource").(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}
