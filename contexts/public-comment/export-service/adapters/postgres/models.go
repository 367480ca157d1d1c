package postgresadapter

import (
	"encoding/json"
	"time"

	"docketdesk/contexts/public-comment/export-service/domain/entities"

	"gorm.io/datatypes"
)

type jobModel struct {
	JobID        string         `gorm:"column:job_id;primaryKey"`
	TenantID     string         `gorm:"column:tenant_id;index:export_jobs_tenant_created"`
	Type         string         `gorm:"column:job_type"`
	Filter       datatypes.JSON `gorm:"column:filter"`
	DocketID     string         `gorm:"column:docket_id"`
	Status       string         `gorm:"column:status;index"`
	Progress     int            `gorm:"column:progress"`
	ArtifactPath string         `gorm:"column:artifact_path"`
	ArtifactSize int64          `gorm:"column:artifact_size"`
	ErrorMessage string         `gorm:"column:error_message"`
	ExpiresAt    *time.Time     `gorm:"column:expires_at;index"`
	CreatedBy    string         `gorm:"column:created_by"`
	CreatedAt    time.Time      `gorm:"column:created_at;index:export_jobs_tenant_created"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
	StartedAt    *time.Time     `gorm:"column:started_at"`
	CompletedAt  *time.Time     `gorm:"column:completed_at"`
}

func (jobModel) TableName() string {
	return "export_jobs"
}

func (m jobModel) toEntity() (entities.Job, error) {
	var filter entities.FilterSpec
	if len(m.Filter) > 0 {
		if err := json.Unmarshal(m.Filter, &filter); err != nil {
			return entities.Job{}, err
		}
	}
	return entities.Job{
		JobID:        m.JobID,
		TenantID:     m.TenantID,
		Type:         entities.JobType(m.Type),
		Filter:       filter,
		DocketID:     m.DocketID,
		Status:       entities.JobStatus(m.Status),
		Progress:     m.Progress,
		ArtifactPath: m.ArtifactPath,
		ArtifactSize: m.ArtifactSize,
		ErrorMessage: m.ErrorMessage,
		ExpiresAt:    utcPtr(m.ExpiresAt),
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		StartedAt:    utcPtr(m.StartedAt),
		CompletedAt:  utcPtr(m.CompletedAt),
	}, nil
}

func jobModelFromEntity(job entities.Job) (jobModel, error) {
	filter, err := json.Marshal(job.Filter)
	if err != nil {
		return jobModel{}, err
	}
	return jobModel{
		JobID:        job.JobID,
		TenantID:     job.TenantID,
		Type:         string(job.Type),
		Filter:       datatypes.JSON(filter),
		DocketID:     job.DocketID,
		Status:       string(job.Status),
		Progress:     job.Progress,
		ArtifactPath: job.ArtifactPath,
		ArtifactSize: job.ArtifactSize,
		ErrorMessage: job.ErrorMessage,
		ExpiresAt:    job.ExpiresAt,
		CreatedBy:    job.CreatedBy,
		CreatedAt:    job.CreatedAt.UTC(),
		UpdatedAt:    job.UpdatedAt.UTC(),
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
	}, nil
}

// Read-only projections over tables owned by the moderation service.

type sourceCommentRow struct {
	CommentID             string    `gorm:"column:comment_id"`
	TenantID              string    `gorm:"column:tenant_id"`
	DocketID              string    `gorm:"column:docket_id"`
	DocketTitle           string    `gorm:"column:docket_title"`
	DocketReference       string    `gorm:"column:docket_reference"`
	CommenterName         string    `gorm:"column:commenter_name"`
	CommenterEmail        string    `gorm:"column:commenter_email"`
	CommenterOrganization string    `gorm:"column:commenter_organization"`
	Content               string    `gorm:"column:content"`
	Status                string    `gorm:"column:status"`
	SubmittedAt           time.Time `gorm:"column:submitted_at"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`
}

type sourceAttachmentRow struct {
	AttachmentID string `gorm:"column:attachment_id"`
	CommentID    string `gorm:"column:comment_id"`
	FileName     string `gorm:"column:file_name"`
	ContentType  string `gorm:"column:content_type"`
	SizeBytes    int64  `gorm:"column:size_bytes"`
	StoragePath  string `gorm:"column:storage_path"`
}

func (r sourceCommentRow) toEntity(attachments []entities.SourceAttachment) entities.SourceComment {
	return entities.SourceComment{
		CommentID:             r.CommentID,
		TenantID:              r.TenantID,
		DocketID:              r.DocketID,
		DocketTitle:           r.DocketTitle,
		DocketReference:       r.DocketReference,
		CommenterName:         r.CommenterName,
		CommenterEmail:        r.CommenterEmail,
		CommenterOrganization: r.CommenterOrganization,
		Content:               r.Content,
		Status:                r.Status,
		Attachments:           attachments,
		SubmittedAt:           r.SubmittedAt.UTC(),
		UpdatedAt:             r.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
