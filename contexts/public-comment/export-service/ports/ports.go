package ports

import (
	"context"
	"io"
	"time"

	"docketdesk/contexts/public-comment/export-service/domain/entities"
	eventsv1 "docketdesk/contracts/gen/events/v1"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type ActorResolver interface {
	ResolveActor(ctx context.Context, tenantID string, actorID string) (entities.Actor, error)
}

type AccessPolicy interface {
	Authorize(role string, permission string) bool
	ExplainDenial(permission string, role string) string
}

// CompletedArtifact is what the worker records when a job succeeds.
type CompletedArtifact struct {
	Path        string
	Size        int64
	CompletedAt time.Time
	ExpiresAt   time.Time
}

// SweepCriteria selects jobs whose records and artifacts can be removed.
type SweepCriteria struct {
	ExpiredBefore time.Time
	FailedBefore  time.Time
	Limit         int
}

// JobRepository persists export jobs. Worker-side methods address jobs by id
// alone and return ErrJobNotFound once a job has been deleted.
type JobRepository interface {
	CreateJob(ctx context.Context, job entities.Job) (entities.Job, error)
	GetJob(ctx context.Context, tenantID string, jobID string) (entities.Job, error)
	ListJobs(ctx context.Context, tenantID string, limit int) ([]entities.Job, error)
	DeleteJob(ctx context.Context, tenantID string, jobID string) (entities.Job, error)

	ListPendingJobs(ctx context.Context, limit int) ([]entities.Job, error)
	// ClaimJob moves a pending job to processing. It returns false when the
	// job was already claimed by another worker.
	ClaimJob(ctx context.Context, jobID string, now time.Time) (entities.Job, bool, error)
	UpdateProgress(ctx context.Context, jobID string, progress int, now time.Time) error
	CompleteJob(ctx context.Context, jobID string, artifact CompletedArtifact) error
	FailJob(ctx context.Context, jobID string, message string, now time.Time) error

	ListSweepable(ctx context.Context, criteria SweepCriteria) ([]entities.Job, error)
	// FailStaleJobs fails processing jobs with no progress since staleBefore
	// and returns their ids. Later progress or completion of such a job
	// returns ErrJobNotRunning.
	FailStaleJobs(ctx context.Context, staleBefore time.Time, message string, now time.Time) ([]string, error)
	RemoveJob(ctx context.Context, jobID string) error
}

// CommentSource reads comments joined with dockets for the export worker.
// Implementations may pre-filter; the worker applies the resolved filter
// again before writing.
type CommentSource interface {
	ListExportComments(ctx context.Context, tenantID string, filter entities.ResolvedFilter) ([]entities.SourceComment, error)
}

// ArtifactStore is the object store used for artifacts and attachment reads.
type ArtifactStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// ArchiveWriter appends files to a compressed archive written to an
// underlying stream.
type ArchiveWriter interface {
	Add(name string, modified time.Time, data []byte) error
	Create(name string, modified time.Time) (io.Writer, error)
	Close() error
}

type ArchiveFactory interface {
	NewArchive(w io.Writer) ArchiveWriter
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event eventsv1.Envelope) error
}

// JobObserver receives terminal job outcomes for metrics.
type JobObserver interface {
	JobFinished(jobType string, status string, duration time.Duration, artifactBytes int64)
}

// Admitter runs tasks on a bounded pool. TryGo returns false when the pool
// is full.
type Admitter interface {
	TryGo(ctx context.Context, task func(ctx context.Context)) bool
}
