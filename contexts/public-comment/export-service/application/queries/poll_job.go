package queries

import (
	"context"
	"time"

	"docketdesk/contexts/public-comment/export-service/domain/entities"
)

const defaultPollInterval = 2 * time.Second

// JobFetcher returns the current view of one job.
type JobFetcher func(ctx context.Context) (entities.Job, error)

// PollJob re-queries a job at a fixed interval while it is pending or
// processing and returns the first terminal view. The pipeline never pushes
// status, so this is the only way a caller learns about completion.
func PollJob(ctx context.Context, fetch JobFetcher, interval time.Duration) (entities.Job, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		job, err := fetch(ctx)
		if err != nil {
			return entities.Job{}, err
		}
		switch job.Status {
		case entities.JobStatusPending, entities.JobStatusProcessing:
		default:
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}
