package commands

import (
	"context"
	"log/slog"
	"strings"

	application "docketdesk/contexts/public-comment/export-service/application"
	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/ports"
)

// DeleteJobUseCase removes a job record and its artifact. It does not stop a
// job that is being processed; the worker discards its output when it finds
// the record gone.
type DeleteJobUseCase struct {
	Jobs      ports.JobRepository
	Artifacts ports.ArtifactStore
	Policy    ports.AccessPolicy
	Logger    *slog.Logger
}

func (u DeleteJobUseCase) Execute(ctx context.Context, actor entities.Actor, jobID string) error {
	logger := application.ResolveLogger(u.Logger)
	if err := application.Authorize(u.Policy, actor, entities.PermissionExportsDelete, u.Logger); err != nil {
		return err
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return domainerrors.ErrInvalidRequest
	}
	job, err := u.Jobs.DeleteJob(ctx, actor.TenantID, jobID)
	if err != nil {
		return err
	}
	if job.ArtifactPath != "" && u.Artifacts != nil {
		if err := u.Artifacts.Delete(ctx, job.ArtifactPath); err != nil {
			logger.Warn("export artifact delete failed",
				"event", "export_artifact_delete_failed",
				"module", "public-comment/export-service",
				"layer", "application",
				"tenant_id", actor.TenantID,
				"job_id", jobID,
				"artifact_path", job.ArtifactPath,
				"error", err.Error(),
			)
		}
	}
	logger.Info("export job deleted",
		"event", "export_job_deleted",
		"module", "public-comment/export-service",
		"layer", "application",
		"tenant_id", actor.TenantID,
		"job_id", jobID,
		"job_status", string(job.Status),
		"actor_id", actor.ActorID,
	)
	return nil
}
