package workerpool

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

// Pool runs tasks with a hard cap on concurrency. Admission never blocks:
// TryGo reports false when every slot is taken.
type Pool struct {
	name     string
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	inFlight atomic.Int64
	closed   atomic.Bool
	tracer   trace.Tracer
	logger   *slog.Logger
}

func New(name string, size int, logger *slog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		name:   name,
		sem:    semaphore.NewWeighted(int64(size)),
		tracer: otel.Tracer("docketdesk/workerpool"),
		logger: logger,
	}
}

// TryGo starts task when a slot is free. The task context keeps ctx values
// but not its cancellation, so work admitted from a request outlives it.
func (p *Pool) TryGo(ctx context.Context, task func(ctx context.Context)) bool {
	if p.closed.Load() || !p.sem.TryAcquire(1) {
		return false
	}
	p.wg.Add(1)
	p.inFlight.Add(1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				p.logger.Error("worker pool task panicked",
					"event", "worker_pool_task_panic",
					"module", "internal/platform/workerpool",
					"layer", "platform",
					"pool", p.name,
					"panic", recovered,
				)
			}
			p.inFlight.Add(-1)
			p.sem.Release(1)
			p.wg.Done()
		}()
		runCtx, span := p.tracer.Start(context.WithoutCancel(ctx), p.name+".task",
			trace.WithAttributes(attribute.String("pool", p.name)),
		)
		defer span.End()
		task(runCtx)
		span.SetStatus(codes.Ok, "")
	}()
	return true
}

func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// Shutdown stops admission and waits for running tasks or ctx.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.closed.Store(true)
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
