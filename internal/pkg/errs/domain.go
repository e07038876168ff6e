package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Business outcome sentinels. AlreadyReleased is informational; Conflict and OutOfStock
// are retryable; Unauthorized and InvalidTransition mean the caller misused the API.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrMissingReason     = errors.New("missing reason")
	ErrOutOfStock        = errors.New("out of stock")
	ErrDealExpired       = errors.New("deal expired")
	ErrAlreadyAssigned   = errors.New("already assigned")
	ErrRiderBusy         = errors.New("rider busy")
	ErrAlreadyReleased   = errors.New("already released")
	ErrConflict          = errors.New("conflict")

	// ErrDealNotStarted refuses a deal whose window has not opened yet. It also matches
	// ErrDealExpired, since both mean the deal is outside its window.
	ErrDealNotStarted error = dealNotStartedError{}
)

type dealNotStartedError struct{}

func (dealNotStartedError) Error() string { return "deal not started" }

func (dealNotStartedError) Is(target error) bool { return target == ErrDealExpired }

// DomainError wraps one of the business outcome sentinels with call-site detail.
type DomainError struct {
	Sentinel error
	Message  string
	Cause    error
}

// NewDomainError builds a DomainError for sentinel.
func NewDomainError(sentinel error, message string) *DomainError {
	return &DomainError{Sentinel: sentinel, Message: message}
}

// NewDomainErrorWithCause builds a DomainError that also records the underlying cause.
func NewDomainErrorWithCause(sentinel error, message string, cause error) *DomainError {
	return &DomainError{Sentinel: sentinel, Message: message, Cause: cause}
}

func (e *DomainError) Error() string {
	msg := e.Sentinel.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, sanitize(e.Message))
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Sentinel
}

// Kind is the transport-neutral category of an error.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
	KindInvalidTransition Kind = "invalid_transition"
	KindMissingReason     Kind = "missing_reason"
	KindOutOfStock        Kind = "out_of_stock"
	KindDealExpired       Kind = "deal_expired"
	KindDealNotStarted    Kind = "deal_not_started"
	KindAlreadyAssigned   Kind = "already_assigned"
	KindRiderBusy         Kind = "rider_busy"
	KindAlreadyReleased   Kind = "already_released"
	KindConflict          Kind = "conflict"
	KindInvalidValue      Kind = "invalid_value"
	KindCanceled          Kind = "canceled"
	KindInternal          Kind = "internal"
)

// KindOf classifies err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrMissingReason):
		return KindMissingReason
	case errors.Is(err, ErrOutOfStock):
		return KindOutOfStock
	case errors.Is(err, ErrDealNotStarted):
		return KindDealNotStarted
	case errors.Is(err, ErrDealExpired):
		return KindDealExpired
	case errors.Is(err, ErrAlreadyAssigned):
		return KindAlreadyAssigned
	case errors.Is(err, ErrRiderBusy):
		return KindRiderBusy
	case errors.Is(err, ErrAlreadyReleased):
		return KindAlreadyReleased
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsRequired),
		errors.Is(err, ErrValueIsOutOfRange):
		return KindInvalidValue
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

// HTTPStatus maps err to the response status used by the HTTP adapter.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case "":
		return http.StatusOK
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindInvalidTransition, KindAlreadyAssigned, KindRiderBusy, KindAlreadyReleased, KindConflict, KindOutOfStock,
		KindDealNotStarted:
		return http.StatusConflict
	case KindMissingReason, KindInvalidValue:
		return http.StatusUnprocessableEntity
	case KindDealExpired:
		return http.StatusGone
	case KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether a caller may retry with fresh state.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrOutOfStock)
}

// IsCallerMisuse reports errors that deserve higher log severity.
func IsCallerMisuse(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidTransition)
}
