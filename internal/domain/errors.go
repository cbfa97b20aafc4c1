package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or empty checkout input. The caller can
	// fix the request and retry.
	ErrValidation = errors.New("validation failed")

	// ErrPaymentGatewayUnavailable marks a transport failure or timeout
	// talking to the payment provider. The whole checkout is safe to retry.
	ErrPaymentGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrPaymentRejected means the gateway answered but the payment is not
	// in a trustable state. Never retried automatically.
	ErrPaymentRejected = errors.New("payment rejected")

	// ErrInvalidTransition marks a status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConcurrentModification means the order changed between read and
	// write; the caller should reload and act on fresh state.
	ErrConcurrentModification = errors.New("order modified concurrently")

	// ErrPersistenceFailure means the transaction rolled back. No partial
	// state remains, so checkout may be retried.
	ErrPersistenceFailure = errors.New("persistence failure")

	ErrOrderNotFound = errors.New("order not found")
	ErrForbidden     = errors.New("forbidden")
)

// InvalidTransitionError carries the current and requested states so staff
// UIs can show what the order actually is.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
