package entities

import (
	"strings"
	"time"
)

type JobType string

const (
	JobTypeTabular  JobType = "tabular"
	JobTypeArchive  JobType = "archive"
	JobTypeCombined JobType = "combined"
)

func ParseJobType(raw string) (JobType, bool) {
	jobType := JobType(strings.ToLower(strings.TrimSpace(raw)))
	switch jobType {
	case JobTypeTabular, JobTypeArchive, JobTypeCombined:
		return jobType, true
	default:
		return "", false
	}
}

// Extension is the artifact file extension for the job type.
func (t JobType) Extension() string {
	if t == JobTypeTabular {
		return "csv"
	}
	return "zip"
}

func (t JobType) ContentType() string {
	if t == JobTypeTabular {
		return "text/csv; charset=utf-8"
	}
	return "application/zip"
}

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	// JobStatusExpired is never stored. It is reported for completed jobs
	// whose artifact retention has run out.
	JobStatusExpired JobStatus = "expired"
)

// Progress checkpoints reported by the worker.
const (
	ProgressClaimed   = 0
	ProgressResolved  = 20
	ProgressGenerated = 70
	ProgressUploaded  = 90
	ProgressCompleted = 100
)

type Job struct {
	JobID        string
	TenantID     string
	Type         JobType
	Filter       FilterSpec
	DocketID     string
	Status       JobStatus
	Progress     int
	ArtifactPath string
	ArtifactSize int64
	ErrorMessage string
	ExpiresAt    *time.Time
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// EffectiveStatus is the status reported to callers at now.
func (j Job) EffectiveStatus(now time.Time) JobStatus {
	if j.Status == JobStatusCompleted && j.ExpiresAt != nil && now.After(*j.ExpiresAt) {
		return JobStatusExpired
	}
	return j.Status
}

func (j Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Actor is the resolved caller of an export operation.
type Actor struct {
	TenantID string
	ActorID  string
	Role     string
}

const (
	PermissionExportsView   = "exports.view"
	PermissionExportsCreate = "exports.create"
	PermissionExportsDelete = "exports.delete"
)
