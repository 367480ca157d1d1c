package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "docketdesk/contexts/public-comment/export-service/application"
	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/ports"
)

// GetJobUseCase returns a job with its status as reported at read time, so
// completed jobs past expires_at come back as expired.
type GetJobUseCase struct {
	Jobs   ports.JobRepository
	Policy ports.AccessPolicy
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u GetJobUseCase) Execute(ctx context.Context, actor entities.Actor, jobID string) (entities.Job, error) {
	if err := application.Authorize(u.Policy, actor, entities.PermissionExportsView, u.Logger); err != nil {
		return entities.Job{}, err
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return entities.Job{}, domainerrors.ErrInvalidRequest
	}
	job, err := u.Jobs.GetJob(ctx, actor.TenantID, jobID)
	if err != nil {
		return entities.Job{}, err
	}
	job.Status = job.EffectiveStatus(now(u.Clock))
	return job, nil
}

func now(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}
