package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "docketdesk/contexts/public-comment/export-service/application"
	"docketdesk/contexts/public-comment/export-service/ports"
)

const (
	defaultSweepGrace = 24 * time.Hour
	defaultSweepBatch = 100
	defaultStaleAfter = time.Hour

	staleJobMessage = "export worker stopped reporting progress"
)

// ExpirySweeper fails stuck processing jobs, then removes jobs that have been
// expired or failed for longer than Grace together with their artifacts. A
// job row is kept when its artifact could not be deleted so the next pass
// retries.
type ExpirySweeper struct {
	Jobs       ports.JobRepository
	Artifacts  ports.ArtifactStore
	Clock      ports.Clock
	Grace      time.Duration
	StaleAfter time.Duration
	BatchSize  int
	Logger     *slog.Logger
}

func (s ExpirySweeper) RunOnce(ctx context.Context) (int, error) {
	if s.Jobs == nil {
		return 0, errors.New("export sweeper is not configured")
	}
	logger := application.ResolveLogger(s.Logger)
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}
	grace := s.Grace
	if grace <= 0 {
		grace = defaultSweepGrace
	}
	limit := s.BatchSize
	if limit <= 0 {
		limit = defaultSweepBatch
	}
	staleAfter := s.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}

	stale, err := s.Jobs.FailStaleJobs(ctx, now.Add(-staleAfter), staleJobMessage, now)
	if err != nil {
		return 0, err
	}
	if len(stale) > 0 {
		logger.Warn("stale export jobs failed",
			"event", "export_sweep_stale_failed",
			"module", "public-comment/export-service",
			"layer", "worker",
			"job_ids", stale,
		)
	}

	jobs, err := s.Jobs.ListSweepable(ctx, ports.SweepCriteria{
		ExpiredBefore: now.Add(-grace),
		FailedBefore:  now.Add(-grace),
		Limit:         limit,
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, job := range jobs {
		if job.ArtifactPath != "" && s.Artifacts != nil {
			if err := s.Artifacts.Delete(ctx, job.ArtifactPath); err != nil {
				logger.Warn("expired export artifact not removed",
					"event", "export_sweep_artifact_failed",
					"module", "public-comment/export-service",
					"layer", "worker",
					"job_id", job.JobID,
					"artifact_path", job.ArtifactPath,
					"error", err.Error(),
				)
				continue
			}
		}
		if err := s.Jobs.RemoveJob(ctx, job.JobID); err != nil {
			logger.Warn("expired export job not removed",
				"event", "export_sweep_job_failed",
				"module", "public-comment/export-service",
				"layer", "worker",
				"job_id", job.JobID,
				"error", err.Error(),
			)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("expired export jobs swept",
			"event", "export_sweep_completed",
			"module", "public-comment/export-service",
			"layer", "worker",
			"removed", removed,
		)
	}
	return removed, nil
}
