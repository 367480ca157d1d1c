package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/ports"
)

// Store keeps export jobs in memory. It can also serve as a CommentSource
// for seeded comments when no moderation store is bridged in.
type Store struct {
	mu sync.RWMutex

	jobs     map[string]entities.Job
	comments map[string][]entities.SourceComment
	sequence uint64
}

func NewStore() *Store {
	return &Store{
		jobs:     make(map[string]entities.Job),
		comments: make(map[string][]entities.SourceComment),
	}
}

// SeedComments replaces the export source for a tenant.
func (s *Store) SeedComments(tenantID string, comments []entities.SourceComment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[tenantID] = append([]entities.SourceComment(nil), comments...)
}

func (s *Store) CreateJob(ctx context.Context, job entities.Job) (entities.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.JobID]; exists {
		return entities.Job{}, domainerrors.ErrConflict
	}
	s.jobs[job.JobID] = job
	return job, nil
}

func (s *Store) GetJob(ctx context.Context, tenantID string, jobID string) (entities.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok || job.TenantID != tenantID {
		return entities.Job{}, domainerrors.ErrJobNotFound
	}
	return job, nil
}

func (s *Store) ListJobs(ctx context.Context, tenantID string, limit int) ([]entities.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Job, 0)
	for _, job := range s.jobs {
		if job.TenantID == tenantID {
			items = append(items, job)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].JobID > items[j].JobID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) DeleteJob(ctx context.Context, tenantID string, jobID string) (entities.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.TenantID != tenantID {
		return entities.Job{}, domainerrors.ErrJobNotFound
	}
	delete(s.jobs, jobID)
	return job, nil
}

func (s *Store) ListPendingJobs(ctx context.Context, limit int) ([]entities.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Job, 0)
	for _, job := range s.jobs {
		if job.Status == entities.JobStatusPending {
			items = append(items, job)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].JobID < items[j].JobID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ClaimJob(ctx context.Context, jobID string, now time.Time) (entities.Job, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return entities.Job{}, false, domainerrors.ErrJobNotFound
	}
	if job.Status != entities.JobStatusPending {
		return job, false, nil
	}
	started := now.UTC()
	job.Status = entities.JobStatusProcessing
	job.Progress = entities.ProgressClaimed
	job.StartedAt = &started
	job.UpdatedAt = started
	s.jobs[jobID] = job
	return job, true, nil
}

func (s *Store) UpdateProgress(ctx context.Context, jobID string, progress int, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domainerrors.ErrJobNotFound
	}
	if job.Status == entities.JobStatusFailed {
		return domainerrors.ErrJobNotRunning
	}
	if progress > job.Progress {
		job.Progress = progress
	}
	job.UpdatedAt = now.UTC()
	s.jobs[jobID] = job
	return nil
}

func (s *Store) CompleteJob(ctx context.Context, jobID string, artifact ports.CompletedArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domainerrors.ErrJobNotFound
	}
	if job.Status == entities.JobStatusFailed {
		return domainerrors.ErrJobNotRunning
	}
	completedAt := artifact.CompletedAt.UTC()
	expiresAt := artifact.ExpiresAt.UTC()
	job.Status = entities.JobStatusCompleted
	job.Progress = entities.ProgressCompleted
	job.ArtifactPath = artifact.Path
	job.ArtifactSize = artifact.Size
	job.CompletedAt = &completedAt
	job.ExpiresAt = &expiresAt
	job.UpdatedAt = completedAt
	job.ErrorMessage = ""
	s.jobs[jobID] = job
	return nil
}

func (s *Store) FailJob(ctx context.Context, jobID string, message string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domainerrors.ErrJobNotFound
	}
	failedAt := now.UTC()
	job.Status = entities.JobStatusFailed
	job.ErrorMessage = message
	job.ArtifactPath = ""
	job.ArtifactSize = 0
	job.CompletedAt = &failedAt
	job.UpdatedAt = failedAt
	s.jobs[jobID] = job
	return nil
}

func (s *Store) ListSweepable(ctx context.Context, criteria ports.SweepCriteria) ([]entities.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Job, 0)
	for _, job := range s.jobs {
		if sweepable(job, criteria) {
			items = append(items, job)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].JobID < items[j].JobID })
	if criteria.Limit > 0 && len(items) > criteria.Limit {
		items = items[:criteria.Limit]
	}
	return items, nil
}

func (s *Store) FailStaleJobs(ctx context.Context, staleBefore time.Time, message string, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	failedAt := now.UTC()
	ids := make([]string, 0)
	for id, job := range s.jobs {
		if job.Status != entities.JobStatusProcessing || !job.UpdatedAt.Before(staleBefore) {
			continue
		}
		job.Status = entities.JobStatusFailed
		job.ErrorMessage = message
		job.CompletedAt = &failedAt
		job.UpdatedAt = failedAt
		s.jobs[id] = job
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) RemoveJob(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
	return nil
}

// ListExportComments serves seeded comments. Filtering is left to the worker.
func (s *Store) ListExportComments(ctx context.Context, tenantID string, filter entities.ResolvedFilter) ([]entities.SourceComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.SourceComment(nil), s.comments[tenantID]...), nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return s.nextID("export"), nil
}

func (s *Store) nextID(prefix string) string {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("%s-%d", prefix, n)
}

func sweepable(job entities.Job, criteria ports.SweepCriteria) bool {
	switch job.Status {
	case entities.JobStatusCompleted:
		return job.ExpiresAt != nil && job.ExpiresAt.Before(criteria.ExpiredBefore)
	case entities.JobStatusFailed:
		return !job.UpdatedAt.IsZero() && job.UpdatedAt.Before(criteria.FailedBefore)
	default:
		return false
	}
}

var _ ports.JobRepository = (*Store)(nil)
var _ ports.CommentSource = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
