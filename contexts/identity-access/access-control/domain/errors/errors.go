package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAuthorizationDenied    = errors.New("authorization denied")
	ErrInvariantViolation     = errors.New("invariant violation")
	ErrValidation             = errors.New("validation error")
	ErrInvalidRole            = fmt.Errorf("%w: invalid role", ErrValidation)
	ErrInvalidRequest         = fmt.Errorf("%w: invalid request", ErrValidation)
	ErrNotFound               = errors.New("resource not found")
	ErrMembershipNotFound     = fmt.Errorf("%w: membership", ErrNotFound)
	ErrConflict               = errors.New("conflict")
	ErrTransientStore         = errors.New("transient store error")
	ErrIdempotencyConflict    = errors.New("idempotency key conflict")
	ErrSoleOwner              = fmt.Errorf("%w: tenant must retain at least one active owner", ErrInvariantViolation)
	ErrRoleOutsideActorReach  = fmt.Errorf("%w: role is outside the actor's management reach", ErrAuthorizationDenied)
	ErrMembershipNotPending   = fmt.Errorf("%w: membership is not pending", ErrConflict)
	ErrMembershipNotActive    = fmt.Errorf("%w: membership is not active", ErrConflict)
	ErrMembershipAlreadyExist = fmt.Errorf("%w: membership already exists", ErrConflict)
)

// DeniedError reports a permission denial together with the minimum role
// that would have been granted the permission.
type DeniedError struct {
	Permission   string
	Role         string
	RequiredRole string
	Explanation  string
}

func (e *DeniedError) Error() string {
	return e.Explanation
}

func (e *DeniedError) Unwrap() error {
	return ErrAuthorizationDenied
}
