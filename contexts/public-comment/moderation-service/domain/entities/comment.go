package entities

import (
	"strings"
	"time"
)

type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
	CommentStatusFlagged  CommentStatus = "flagged"
)

// CommentStatuses lists every status in display order.
func CommentStatuses() []CommentStatus {
	return []CommentStatus{
		CommentStatusPending,
		CommentStatusApproved,
		CommentStatusRejected,
		CommentStatusFlagged,
	}
}

func ParseCommentStatus(raw string) (CommentStatus, bool) {
	status := CommentStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range CommentStatuses() {
		if status == known {
			return status, true
		}
	}
	return "", false
}

type Attachment struct {
	AttachmentID string
	CommentID    string
	FileName     string
	ContentType  string
	SizeBytes    int64
	StoragePath  string
}

type Comment struct {
	CommentID             string
	TenantID              string
	DocketID              string
	CommenterName         string
	CommenterEmail        string
	CommenterOrganization string
	Content               string
	Status                CommentStatus
	Attachments           []Attachment
	SubmittedAt           time.Time
	UpdatedAt             time.Time
	UpdatedBy             string
}

func (c Comment) Attachment(attachmentID string) (Attachment, bool) {
	for _, item := range c.Attachments {
		if item.AttachmentID == attachmentID {
			return item, true
		}
	}
	return Attachment{}, false
}
