// Package apperror carries a machine-readable error kind next to the human
// readable message so the HTTP layer never has to inspect message text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match on Code, so a copy made by Withf or Wrap still equals
// the predeclared error it came from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Withf returns a copy of e with a formatted message.
func (e *Error) Withf(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func Validation(message string) *Error {
	return New(KindValidation, "VALIDATION_ERROR", message)
}

func NotFound(resource string) *Error {
	return New(KindNotFound, "NOT_FOUND", resource+" not found")
}

func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Code: "UNAVAILABLE", Message: "datastore is unavailable, try again later", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "an internal error occurred", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal
// when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Predeclared domain errors.
var (
	ErrDuplicateEmail      = New(KindConflict, "DUPLICATE_EMAIL", "user with this email already exists")
	ErrWeakPassword        = New(KindValidation, "WEAK_PASSWORD", "password must contain at least 6 characters")
	ErrInvalidCredentials  = New(KindUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidRefreshToken = New(KindUnauthorized, "INVALID_REFRESH_TOKEN", "invalid or expired refresh token")
	ErrInvalidAccessToken  = New(KindUnauthorized, "INVALID_ACCESS_TOKEN", "invalid or expired access token")
	ErrForbidden           = New(KindForbidden, "FORBIDDEN", "no access to this resource")

	ErrGoodNotFound     = New(KindNotFound, "GOOD_NOT_FOUND", "good not found")
	ErrSupplierNotFound = New(KindNotFound, "SUPPLIER_NOT_FOUND", "supplier not found")
	ErrUserNotFound     = New(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrOrderNotFound    = New(KindNotFound, "ORDER_NOT_FOUND", "order not found")

	ErrOutOfStock        = New(KindConflict, "OUT_OF_STOCK", "good is out of stock")
	ErrBelowMinimum      = New(KindValidation, "BELOW_MINIMUM", "quantity is below the minimum order quantity")
	ErrInsufficientStock = New(KindConflict, "INSUFFICIENT_STOCK", "requested quantity exceeds available stock")
	ErrSelfOrder         = New(KindValidation, "SELF_ORDER", "you cannot order your own good")

	ErrInvalidStatus     = New(KindValidation, "INVALID_STATUS", "unknown order status")
	ErrInvalidTransition = New(KindValidation, "INVALID_TRANSITION", "status transition is not allowed")
	ErrConcurrentUpdate  = New(KindConflict, "CONCURRENT_UPDATE", "the record was changed by another request, reload and retry")
)
