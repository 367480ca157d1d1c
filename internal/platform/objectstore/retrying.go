package objectstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retrying wraps a Store with bounded exponential backoff. Missing objects
// and invalid paths are not retried.
type Retrying struct {
	next       Store
	maxRetries uint64
	initial    time.Duration
	logger     *slog.Logger
}

func NewRetrying(next Store, maxRetries uint64, logger *slog.Logger) *Retrying {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrying{next: next, maxRetries: maxRetries, initial: 100 * time.Millisecond, logger: logger}
}

func (r *Retrying) Put(ctx context.Context, objectPath string, data []byte, contentType string) error {
	return r.retry(ctx, "put", objectPath, func() error {
		return r.next.Put(ctx, objectPath, data, contentType)
	})
}

func (r *Retrying) Get(ctx context.Context, objectPath string) ([]byte, error) {
	var out []byte
	err := r.retry(ctx, "get", objectPath, func() error {
		data, err := r.next.Get(ctx, objectPath)
		if err != nil {
			return err
		}
		out = data
		return nil
	})
	return out, err
}

func (r *Retrying) Delete(ctx context.Context, objectPath string) error {
	return r.retry(ctx, "delete", objectPath, func() error {
		return r.next.Delete(ctx, objectPath)
	})
}

// SignedURL is local computation and is not retried.
func (r *Retrying) SignedURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	return r.next.SignedURL(ctx, objectPath, ttl)
}

func (r *Retrying) retry(ctx context.Context, op string, objectPath string, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initial
	policy.MaxInterval = 2 * time.Second
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := fn()
		if errors.Is(err, ErrObjectNotFound) || errors.Is(err, ErrInvalidPath) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, r.maxRetries), ctx), func(err error, wait time.Duration) {
		r.logger.Warn("object store call failed, retrying",
			"event", "object_store_retry",
			"module", "internal/platform/objectstore",
			"layer", "platform",
			"operation", op,
			"path", objectPath,
			"attempt", attempt,
			"wait_ms", wait.Milliseconds(),
			"error", err.Error(),
		)
	})
}

var _ Store = (*Retrying)(nil)
