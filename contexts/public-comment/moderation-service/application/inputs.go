package application

import (
	"time"

	"docketdesk/contexts/public-comment/moderation-service/domain/entities"
)

type CreateDocketInput struct {
	Title     string
	Reference string
	OpensAt   *time.Time
	ClosesAt  *time.Time
}

type AttachmentUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type SubmitCommentInput struct {
	CommenterName         string
	CommenterEmail        string
	CommenterOrganization string
	Content               string
	Attachments           []AttachmentUpload
}

type ListCommentsInput struct {
	DocketID string
	Status   string
	Limit    int
	Offset   int
}

type ModerateInput struct {
	CommentID string
	Action    string
	Reason    string
}

type BulkModerateInput struct {
	CommentIDs []string
	Action     string
	Reason     string
}

type ModerationResult struct {
	Comment  entities.Comment
	LogEntry *entities.LogEntry
}

type BulkModerationResult struct {
	Comments    []entities.Comment
	LogEntries  int
	Action      entities.Action
	Status      entities.CommentStatus
	ProcessedAt time.Time
}
