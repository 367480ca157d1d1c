package queries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "docketdesk/contexts/public-comment/export-service/application"
	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/ports"
)

const defaultReportURLTTL = 15 * time.Minute

type DownloadURLResult struct {
	URL       string
	ExpiresAt time.Time
	FileName  string
}

// DownloadURLUseCase mints a fresh signed URL on every call. Nothing is
// cached between calls.
type DownloadURLUseCase struct {
	Jobs         ports.JobRepository
	Artifacts    ports.ArtifactStore
	Policy       ports.AccessPolicy
	Clock        ports.Clock
	ReportURLTTL time.Duration
	Logger       *slog.Logger
}

func (u DownloadURLUseCase) Execute(ctx context.Context, actor entities.Actor, jobID string) (DownloadURLResult, error) {
	if err := application.Authorize(u.Policy, actor, entities.PermissionExportsView, u.Logger); err != nil {
		return DownloadURLResult{}, err
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return DownloadURLResult{}, domainerrors.ErrInvalidRequest
	}
	job, err := u.Jobs.GetJob(ctx, actor.TenantID, jobID)
	if err != nil {
		return DownloadURLResult{}, err
	}
	at := now(u.Clock)
	if status := job.EffectiveStatus(at); status != entities.JobStatusCompleted || job.ArtifactPath == "" {
		return DownloadURLResult{}, fmt.Errorf("%w: job is %s", domainerrors.ErrArtifactUnavailable, status)
	}
	if u.Artifacts == nil {
		return DownloadURLResult{}, domainerrors.ErrDependencyUnavailable
	}
	ttl := u.ReportURLTTL
	if ttl <= 0 {
		ttl = defaultReportURLTTL
	}
	if job.ExpiresAt != nil && job.ExpiresAt.Sub(at) < ttl {
		ttl = job.ExpiresAt.Sub(at)
	}
	url, err := u.Artifacts.SignedURL(ctx, job.ArtifactPath, ttl)
	if err != nil {
		application.ResolveLogger(u.Logger).Error("export download url failed",
			"event", "export_download_url_failed",
			"module", "public-comment/export-service",
			"layer", "application",
			"tenant_id", actor.TenantID,
			"job_id", jobID,
			"error", err.Error(),
		)
		return DownloadURLResult{}, fmt.Errorf("%w: sign download url: %w", domainerrors.ErrTransientStore, err)
	}
	return DownloadURLResult{
		URL:       url,
		ExpiresAt: at.Add(ttl),
		FileName:  job.ArtifactPath[strings.LastIndex(job.ArtifactPath, "/")+1:],
	}, nil
}
