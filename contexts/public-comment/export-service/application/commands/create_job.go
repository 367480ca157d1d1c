package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "docketdesk/contexts/public-comment/export-service/application"
	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/ports"
	eventsv1 "docketdesk/contracts/gen/events/v1"
)

type CreateJobCommand struct {
	Type     string
	Filter   entities.FilterSpec
	DocketID string
}

// CreateJobUseCase records a pending export and returns without waiting for
// it. Filter semantics are checked by the worker, so a malformed filter
// surfaces as a failed job.
type CreateJobUseCase struct {
	Jobs        ports.JobRepository
	Policy      ports.AccessPolicy
	Events      ports.EventPublisher
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u CreateJobUseCase) Execute(ctx context.Context, actor entities.Actor, cmd CreateJobCommand) (entities.Job, error) {
	logger := application.ResolveLogger(u.Logger)
	if err := application.Authorize(u.Policy, actor, entities.PermissionExportsCreate, u.Logger); err != nil {
		return entities.Job{}, err
	}
	jobType, ok := entities.ParseJobType(cmd.Type)
	if !ok {
		return entities.Job{}, domainerrors.ErrUnknownJobType
	}

	jobID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Job{}, err
	}
	now := u.now()
	job, err := u.Jobs.CreateJob(ctx, entities.Job{
		JobID:     jobID,
		TenantID:  actor.TenantID,
		Type:      jobType,
		Filter:    cmd.Filter,
		DocketID:  strings.TrimSpace(cmd.DocketID),
		Status:    entities.JobStatusPending,
		Progress:  entities.ProgressClaimed,
		CreatedBy: actor.ActorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		logger.Error("export job create failed",
			"event", "export_job_create_failed",
			"module", "public-comment/export-service",
			"layer", "application",
			"tenant_id", actor.TenantID,
			"error", err.Error(),
		)
		return entities.Job{}, err
	}

	u.publishRequested(ctx, job)
	logger.Info("export job created",
		"event", "export_job_created",
		"module", "public-comment/export-service",
		"layer", "application",
		"tenant_id", job.TenantID,
		"job_id", job.JobID,
		"job_type", string(job.Type),
		"actor_id", actor.ActorID,
	)
	return job, nil
}

// publishRequested wakes a worker early. Losing the event only delays the
// job until the next poll.
func (u CreateJobUseCase) publishRequested(ctx context.Context, job entities.Job) {
	if u.Events == nil {
		return
	}
	eventID, err := u.IDGenerator.NewID(ctx)
	if err == nil {
		var envelope eventsv1.Envelope
		envelope, err = eventsv1.NewEnvelope(eventID, eventsv1.TopicExportRequested, "export-service", job.TenantID, u.now(), eventsv1.ExportRequested{
			TenantID: job.TenantID,
			JobID:    job.JobID,
			Type:     string(job.Type),
		})
		if err == nil {
			err = u.Events.Publish(ctx, eventsv1.TopicExportRequested, envelope)
		}
	}
	if err != nil {
		application.ResolveLogger(u.Logger).Warn("export requested event not published",
			"event", "export_job_event_publish_failed",
			"module", "public-comment/export-service",
			"layer", "application",
			"job_id", job.JobID,
			"error", err.Error(),
		)
	}
}

func (u CreateJobUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
