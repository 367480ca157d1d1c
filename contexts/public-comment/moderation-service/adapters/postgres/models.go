package postgresadapter

import (
	"time"

	"docketdesk/contexts/public-comment/moderation-service/domain/entities"
)

type docketModel struct {
	DocketID  string     `gorm:"column:docket_id;primaryKey"`
	TenantID  string     `gorm:"column:tenant_id;index;uniqueIndex:dockets_tenant_reference_unique"`
	Title     string     `gorm:"column:title"`
	Reference string     `gorm:"column:reference;uniqueIndex:dockets_tenant_reference_unique"`
	Status    string     `gorm:"column:status"`
	OpensAt   *time.Time `gorm:"column:opens_at"`
	ClosesAt  *time.Time `gorm:"column:closes_at"`
	CreatedBy string     `gorm:"column:created_by"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (docketModel) TableName() string {
	return "dockets"
}

func (m docketModel) toEntity() entities.Docket {
	return entities.Docket{
		DocketID:  m.DocketID,
		TenantID:  m.TenantID,
		Title:     m.Title,
		Reference: m.Reference,
		Status:    entities.DocketStatus(m.Status),
		OpensAt:   m.OpensAt,
		ClosesAt:  m.ClosesAt,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func docketModelFromEntity(d entities.Docket) docketModel {
	return docketModel{
		DocketID:  d.DocketID,
		TenantID:  d.TenantID,
		Title:     d.Title,
		Reference: d.Reference,
		Status:    string(d.Status),
		OpensAt:   d.OpensAt,
		ClosesAt:  d.ClosesAt,
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type commentModel struct {
	CommentID             string    `gorm:"column:comment_id;primaryKey"`
	TenantID              string    `gorm:"column:tenant_id;index:comments_tenant_status"`
	DocketID              string    `gorm:"column:docket_id;index"`
	CommenterName         string    `gorm:"column:commenter_name"`
	CommenterEmail        string    `gorm:"column:commenter_email"`
	CommenterOrganization string    `gorm:"column:commenter_organization"`
	Content               string    `gorm:"column:content"`
	Status                string    `gorm:"column:status;index:comments_tenant_status"`
	SubmittedAt           time.Time `gorm:"column:submitted_at"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`
	UpdatedBy             string    `gorm:"column:updated_by"`
}

func (commentModel) TableName() string {
	return "comments"
}

func (m commentModel) toEntity() entities.Comment {
	return entities.Comment{
		CommentID:             m.CommentID,
		TenantID:              m.TenantID,
		DocketID:              m.DocketID,
		CommenterName:         m.CommenterName,
		CommenterEmail:        m.CommenterEmail,
		CommenterOrganization: m.CommenterOrganization,
		Content:               m.Content,
		Status:                entities.CommentStatus(m.Status),
		SubmittedAt:           m.SubmittedAt.UTC(),
		UpdatedAt:             m.UpdatedAt.UTC(),
		UpdatedBy:             m.UpdatedBy,
	}
}

func commentModelFromEntity(c entities.Comment) commentModel {
	return commentModel{
		CommentID:             c.CommentID,
		TenantID:              c.TenantID,
		DocketID:              c.DocketID,
		CommenterName:         c.CommenterName,
		CommenterEmail:        c.CommenterEmail,
		CommenterOrganization: c.CommenterOrganization,
		Content:               c.Content,
		Status:                string(c.Status),
		SubmittedAt:           c.SubmittedAt.UTC(),
		UpdatedAt:             c.UpdatedAt.UTC(),
		UpdatedBy:             c.UpdatedBy,
	}
}

type attachmentModel struct {
	AttachmentID string `gorm:"column:attachment_id;primaryKey"`
	CommentID    string `gorm:"column:comment_id;index"`
	FileName     string `gorm:"column:file_name"`
	ContentType  string `gorm:"column:content_type"`
	SizeBytes    int64  `gorm:"column:size_bytes"`
	StoragePath  string `gorm:"column:storage_path"`
}

func (attachmentModel) TableName() string {
	return "comment_attachments"
}

func (m attachmentModel) toEntity() entities.Attachment {
	return entities.Attachment{
		AttachmentID: m.AttachmentID,
		CommentID:    m.CommentID,
		FileName:     m.FileName,
		ContentType:  m.ContentType,
		SizeBytes:    m.SizeBytes,
		StoragePath:  m.StoragePath,
	}
}

func attachmentModelFromEntity(a entities.Attachment) attachmentModel {
	return attachmentModel{
		AttachmentID: a.AttachmentID,
		CommentID:    a.CommentID,
		FileName:     a.FileName,
		ContentType:  a.ContentType,
		SizeBytes:    a.SizeBytes,
		StoragePath:  a.StoragePath,
	}
}

type logEntryModel struct {
	EntryID         string    `gorm:"column:entry_id;primaryKey"`
	TenantID        string    `gorm:"column:tenant_id;index:moderation_log_comment"`
	CommentID       string    `gorm:"column:comment_id;index:moderation_log_comment"`
	Action          string    `gorm:"column:action"`
	ActorID         string    `gorm:"column:actor_id"`
	Reason          string    `gorm:"column:reason"`
	PreviousStatus  string    `gorm:"column:previous_status"`
	ResultingStatus string    `gorm:"column:resulting_status"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (logEntryModel) TableName() string {
	return "moderation_log"
}

func (m logEntryModel) toEntity() entities.LogEntry {
	return entities.LogEntry{
		EntryID:         m.EntryID,
		TenantID:        m.TenantID,
		CommentID:       m.CommentID,
		Action:          entities.Action(m.Action),
		ActorID:         m.ActorID,
		Reason:          m.Reason,
		PreviousStatus:  entities.CommentStatus(m.PreviousStatus),
		ResultingStatus: entities.CommentStatus(m.ResultingStatus),
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

func logEntryModelFromEntity(e entities.LogEntry) logEntryModel {
	return logEntryModel{
		EntryID:         e.EntryID,
		TenantID:        e.TenantID,
		CommentID:       e.CommentID,
		Action:          string(e.Action),
		ActorID:         e.ActorID,
		Reason:          e.Reason,
		PreviousStatus:  string(e.PreviousStatus),
		ResultingStatus: string(e.ResultingStatus),
		CreatedAt:       e.CreatedAt.UTC(),
	}
}

type idempotencyModel struct {
	Key         string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (idempotencyModel) TableName() string {
	return "moderation_idempotency"
}
