package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAuthorizationDenied   = errors.New("authorization denied")
	ErrValidation            = errors.New("validation error")
	ErrInvalidRequest        = fmt.Errorf("%w: invalid request", ErrValidation)
	ErrInvalidAction         = fmt.Errorf("%w: unknown moderation action", ErrValidation)
	ErrInvalidTransition     = fmt.Errorf("%w: transition not allowed from current status", ErrValidation)
	ErrEmptySelection        = fmt.Errorf("%w: bulk selection is empty", ErrValidation)
	ErrDocketClosed          = fmt.Errorf("%w: docket is not accepting comments", ErrValidation)
	ErrNotFound              = errors.New("resource not found")
	ErrCommentNotFound       = fmt.Errorf("%w: comment", ErrNotFound)
	ErrDocketNotFound        = fmt.Errorf("%w: docket", ErrNotFound)
	ErrAttachmentNotFound    = fmt.Errorf("%w: attachment", ErrNotFound)
	ErrConflict              = errors.New("conflict")
	ErrDocketAlreadyExists   = fmt.Errorf("%w: docket reference already exists", ErrConflict)
	ErrIdempotencyConflict   = errors.New("idempotency key conflict")
	ErrTransientStore        = errors.New("transient store error")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
