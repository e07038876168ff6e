// Package errs provides the error types shared by the marketplace order core.
//
// Two families live here:
//   - Validation errors (ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError,
//     ObjectNotFoundError) raised by constructors and repositories.
//   - Business outcome errors (DomainError) carrying one of the taxonomy sentinels:
//     ErrUnauthorized, ErrInvalidTransition, ErrMissingReason, ErrOutOfStock, ErrDealExpired,
//     ErrAlreadyAssigned, ErrRiderBusy, ErrAlreadyReleased and ErrConflict.
//
// Every error type unwraps to its sentinel, so callers branch with errors.Is and transports
// map errors to responses with KindOf and HTTPStatus.
package errs
