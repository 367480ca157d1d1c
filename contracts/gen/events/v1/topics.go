package v1

const (
	TopicCommentSubmitted = "comment.submitted"
	TopicCommentModerated = "comment.moderated"
	TopicExportRequested  = "export.requested"
	TopicExportFinished   = "export.finished"
)

type CommentSubmitted struct {
	TenantID        string `json:"tenant_id"`
	DocketID        string `json:"docket_id"`
	CommentID       string `json:"comment_id"`
	AttachmentCount int    `json:"attachment_count"`
}

type CommentModerated struct {
	TenantID       string   `json:"tenant_id"`
	CommentIDs     []string `json:"comment_ids"`
	Action         string   `json:"action"`
	ResultingState string   `json:"resulting_state"`
	ActorID        string   `json:"actor_id"`
}

type ExportRequested struct {
	TenantID string `json:"tenant_id"`
	JobID    string `json:"job_id"`
	Type     string `json:"type"`
}

type ExportFinished struct {
	TenantID     string `json:"tenant_id"`
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	ArtifactSize int64  `json:"artifact_size,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}
