package workers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "docketdesk/contexts/public-comment/export-service/application"
	"docketdesk/contexts/public-comment/export-service/ports"
	eventsv1 "docketdesk/contracts/gen/events/v1"
)

const defaultDispatchBatch = 50

// JobProcessor is satisfied by Processor.
type JobProcessor interface {
	Process(ctx context.Context, jobID string) error
}

// Dispatcher hands pending jobs to the bounded worker pool. Jobs that do not
// fit stay pending and are picked up on a later pass.
type Dispatcher struct {
	Jobs      ports.JobRepository
	Processor JobProcessor
	Pool      ports.Admitter
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce returns the number of jobs admitted to the pool.
func (d Dispatcher) RunOnce(ctx context.Context) (int, error) {
	if d.Jobs == nil || d.Processor == nil || d.Pool == nil {
		return 0, errors.New("export dispatcher is not configured")
	}
	limit := d.BatchSize
	if limit <= 0 {
		limit = defaultDispatchBatch
	}
	pending, err := d.Jobs.ListPendingJobs(ctx, limit)
	if err != nil {
		return 0, err
	}
	admitted := 0
	for _, job := range pending {
		if !d.dispatch(ctx, job.JobID) {
			application.ResolveLogger(d.Logger).Debug("export worker pool full",
				"event", "export_dispatch_deferred",
				"module", "public-comment/export-service",
				"layer", "worker",
				"pending", len(pending)-admitted,
			)
			break
		}
		admitted++
	}
	return admitted, nil
}

// HandleRequested dispatches the job named by an export.requested event.
// A full pool is not an error; the next RunOnce pass picks the job up.
func (d Dispatcher) HandleRequested(ctx context.Context, envelope eventsv1.Envelope) error {
	var payload eventsv1.ExportRequested
	if err := envelope.Decode(&payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.JobID) == "" {
		return errors.New("export.requested event without job_id")
	}
	if d.Processor == nil || d.Pool == nil {
		return errors.New("export dispatcher is not configured")
	}
	d.dispatch(ctx, payload.JobID)
	return nil
}

func (d Dispatcher) dispatch(ctx context.Context, jobID string) bool {
	logger := application.ResolveLogger(d.Logger)
	return d.Pool.TryGo(ctx, func(runCtx context.Context) {
		if err := d.Processor.Process(runCtx, jobID); err != nil {
			logger.Error("export job processing failed",
				"event", "export_job_process_failed",
				"module", "public-comment/export-service",
				"layer", "worker",
				"job_id", jobID,
				"error", err.Error(),
			)
		}
	})
}
