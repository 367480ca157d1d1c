package bootstrap

import (
	"context"
	"log/slog"
	"time"

	exportservice "docketdesk/contexts/public-comment/export-service"
	eventsv1 "docketdesk/contracts/gen/events/v1"
	"docketdesk/internal/platform/messaging"
)

const exportConsumerGroup = "export-workers"

// exportRunner drives the export worker: it reacts to export.requested
// events, polls for pending jobs the bus may have missed, and sweeps expired
// artifacts.
type exportRunner struct {
	exports       exportservice.Module
	bus           messaging.Bus
	pollInterval  time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger
}

func (r exportRunner) Run(ctx context.Context) error {
	if err := r.bus.Subscribe(ctx, eventsv1.TopicExportRequested, exportConsumerGroup, r.exports.Dispatcher.HandleRequested); err != nil {
		return err
	}

	poll := time.NewTicker(r.pollInterval)
	defer poll.Stop()
	sweepInterval := r.sweepInterval
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()

	r.logger.Info("export runner started",
		"event", "bootstrap_export_runner_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", r.pollInterval.String(),
		"sweep_interval", sweepInterval.String(),
	)

	r.dispatch(ctx)
	r.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-poll.C:
			r.dispatch(ctx)
		case <-sweep.C:
			r.sweep(ctx)
		}
	}
}

// dispatch and sweep log failures and keep the loop alive; the next tick
// retries.
func (r exportRunner) dispatch(ctx context.Context) {
	if _, err := r.exports.Dispatcher.RunOnce(ctx); err != nil && ctx.Err() == nil {
		r.logger.Error("export dispatch failed",
			"event", "bootstrap_export_dispatch_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"error", err.Error(),
		)
	}
}

func (r exportRunner) sweep(ctx context.Context) {
	if _, err := r.exports.Sweeper.RunOnce(ctx); err != nil && ctx.Err() == nil {
		r.logger.Error("export sweep failed",
			"event", "bootstrap_export_sweep_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"error", err.Error(),
		)
	}
}
