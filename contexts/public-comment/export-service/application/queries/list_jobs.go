package queries

import (
	"context"
	"log/slog"

	application "docketdesk/contexts/public-comment/export-service/application"
	"docketdesk/contexts/public-comment/export-service/domain/entities"
	"docketdesk/contexts/public-comment/export-service/ports"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ListJobsUseCase struct {
	Jobs   ports.JobRepository
	Policy ports.AccessPolicy
	Clock  ports.Clock
	Logger *slog.Logger
}

// Execute lists the tenant's jobs, most recent first.
func (u ListJobsUseCase) Execute(ctx context.Context, actor entities.Actor, limit int) ([]entities.Job, error) {
	if err := application.Authorize(u.Policy, actor, entities.PermissionExportsView, u.Logger); err != nil {
		return nil, err
	}
	limit = NormalizeLimit(limit)
	jobs, err := u.Jobs.ListJobs(ctx, actor.TenantID, limit)
	if err != nil {
		return nil, err
	}
	at := now(u.Clock)
	for i := range jobs {
		jobs[i].Status = jobs[i].EffectiveStatus(at)
	}
	return jobs, nil
}

// NormalizeLimit applies the list default and cap.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
