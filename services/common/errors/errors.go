package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an Error. Two errors match under errors.Is when their kinds match.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindTenantMismatch     Kind = "tenant_mismatch"
	KindTenantNotPayable   Kind = "tenant_not_payable"
	KindInvalidSignature   Kind = "invalid_signature"
	KindMalformedEvent     Kind = "malformed_event"
	KindProcessor          Kind = "processor_error"
	KindProfilePersistence Kind = "profile_persistence_error"
	KindInvalidTransition  Kind = "invalid_transition"
	KindNotFound           Kind = "not_found"
	KindUnauthorized       Kind = "unauthorized"
	KindInternal           Kind = "internal_error"
)

var statusByKind = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindTenantMismatch:     http.StatusBadRequest,
	KindTenantNotPayable:   http.StatusConflict,
	KindInvalidSignature:   http.StatusBadRequest,
	KindMalformedEvent:     http.StatusUnprocessableEntity,
	KindProcessor:          http.StatusBadGateway,
	KindProfilePersistence: http.StatusInternalServerError,
	KindInvalidTransition:  http.StatusConflict,
	KindNotFound:           http.StatusNotFound,
	KindUnauthorized:       http.StatusUnauthorized,
	KindInternal:           http.StatusInternalServerError,
}

// Error represents an application error
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New creates a new Error of the given kind.
func New(kind Kind, message string, err error) *Error {
	code, ok := statusByKind[kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Sentinels for errors.Is checks.
var (
	ErrValidation         = New(KindValidation, "validation error", nil)
	ErrTenantMismatch     = New(KindTenantMismatch, "tenant mismatch", nil)
	ErrTenantNotPayable   = New(KindTenantNotPayable, "tenant not payable", nil)
	ErrInvalidSignature   = New(KindInvalidSignature, "invalid signature", nil)
	ErrMalformedEvent     = New(KindMalformedEvent, "malformed event", nil)
	ErrProcessor          = New(KindProcessor, "payment processor error", nil)
	ErrProfilePersistence = New(KindProfilePersistence, "profile persistence error", nil)
	ErrInvalidTransition  = New(KindInvalidTransition, "invalid status transition", nil)
	ErrNotFound           = New(KindNotFound, "not found", nil)
	ErrUnauthorized       = New(KindUnauthorized, "unauthorized", nil)
	ErrInternal           = New(KindInternal, "internal error", nil)
)

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...), nil)
}

func TenantMismatch(expected, got int64) *Error {
	return New(KindTenantMismatch, fmt.Sprintf("cart item belongs to tenant %d, expected %d", got, expected), nil)
}

func TenantNotPayable(tenantID int64) *Error {
	return New(KindTenantNotPayable, fmt.Sprintf("tenant %d has not completed payment onboarding", tenantID), nil)
}

func InvalidSignature(err error) *Error {
	return New(KindInvalidSignature, "webhook signature verification failed", err)
}

func MalformedEvent(format string, args ...interface{}) *Error {
	return New(KindMalformedEvent, fmt.Sprintf(format, args...), nil)
}

func Processor(message string, err error) *Error {
	return New(KindProcessor, message, err)
}

func ProfilePersistence(message string, err error) *Error {
	return New(KindProfilePersistence, message, err)
}

func InvalidTransition(from, to string) *Error {
	return New(KindInvalidTransition, fmt.Sprintf("cannot move order from %s to %s", from, to), nil)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func Internal(message string, err error) *Error {
	return New(KindInternal, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Respond writes err as {"error", "kind"}. Internal details of non-application
// errors are never sent to the client.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		appErr = New(KindInternal, "internal error", err)
	}
	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message, "kind": appErr.Kind})
}
