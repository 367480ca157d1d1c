package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAuthorizationDenied   = errors.New("authorization denied")
	ErrValidation            = errors.New("validation error")
	ErrInvalidRequest        = fmt.Errorf("%w: invalid request", ErrValidation)
	ErrUnknownJobType        = fmt.Errorf("%w: unknown export type", ErrValidation)
	ErrInvalidFilter         = fmt.Errorf("%w: invalid filter", ErrValidation)
	ErrNotFound              = errors.New("resource not found")
	ErrJobNotFound           = fmt.Errorf("%w: export job", ErrNotFound)
	ErrConflict              = errors.New("conflict")
	ErrArtifactUnavailable   = fmt.Errorf("%w: artifact is not available for download", ErrConflict)
	ErrJobNotRunning         = fmt.Errorf("%w: export job is no longer processing", ErrConflict)
	ErrTransientStore        = errors.New("transient store error")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
