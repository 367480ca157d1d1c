package http

type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Status    string    `json:"status"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

type CreateDocketRequest struct {
	Title     string `json:"title"`
	Reference string `json:"reference"`
	OpensAt   string `json:"opens_at,omitempty"`
	ClosesAt  string `json:"closes_at,omitempty"`
}

type DocketDTO struct {
	DocketID  string `json:"docket_id"`
	Title     string `json:"title"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	OpensAt   string `json:"opens_at,omitempty"`
	ClosesAt  string `json:"closes_at,omitempty"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

type DocketResponse struct {
	Status    string    `json:"status"`
	Data      DocketDTO `json:"data"`
	Timestamp string    `json:"timestamp"`
}

type DocketListResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items []DocketDTO `json:"items"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

// AttachmentUpload carries the file bytes base64-encoded in JSON.
type AttachmentUpload struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type SubmitCommentRequest struct {
	CommenterName         string             `json:"commenter_name"`
	CommenterEmail        string             `json:"commenter_email,omitempty"`
	CommenterOrganization string             `json:"commenter_organization,omitempty"`
	Content               string             `json:"content"`
	Attachments           []AttachmentUpload `json:"attachments,omitempty"`
}

type AttachmentDTO struct {
	AttachmentID string `json:"attachment_id"`
	FileName     string `json:"file_name"`
	ContentType  string `json:"content_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

type CommentDTO struct {
	CommentID             string          `json:"comment_id"`
	DocketID              string          `json:"docket_id"`
	CommenterName         string          `json:"commenter_name"`
	CommenterEmail        string          `json:"commenter_email,omitempty"`
	CommenterOrganization string          `json:"commenter_organization,omitempty"`
	Content               string          `json:"content"`
	Status                string          `json:"status"`
	Attachments           []AttachmentDTO `json:"attachments"`
	SubmittedAt           string          `json:"submitted_at"`
	UpdatedAt             string          `json:"updated_at"`
	UpdatedBy             string          `json:"updated_by,omitempty"`
}

type CommentResponse struct {
	Status    string     `json:"status"`
	Data      CommentDTO `json:"data"`
	Timestamp string     `json:"timestamp"`
}

type CommentListResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items  []CommentDTO `json:"items"`
		Limit  int          `json:"limit"`
		Offset int          `json:"offset"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type ModerateRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

type BulkModerateRequest struct {
	CommentIDs []string `json:"comment_ids"`
	Action     string   `json:"action"`
	Reason     string   `json:"reason,omitempty"`
}

type LogEntryDTO struct {
	EntryID         string `json:"entry_id"`
	CommentID       string `json:"comment_id"`
	Action          string `json:"action"`
	ActorID         string `json:"actor_id"`
	Reason          string `json:"reason"`
	PreviousStatus  string `json:"previous_status"`
	ResultingStatus string `json:"resulting_status"`
	CreatedAt       string `json:"created_at"`
}

type ModerateResponse struct {
	Status string `json:"status"`
	Data   struct {
		Comment  CommentDTO   `json:"comment"`
		LogEntry *LogEntryDTO `json:"log_entry,omitempty"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type BulkModerateResponse struct {
	Status string `json:"status"`
	Data   struct {
		Action      string   `json:"action"`
		NewStatus   string   `json:"new_status"`
		CommentIDs  []string `json:"comment_ids"`
		Updated     int      `json:"updated"`
		LogEntries  int      `json:"log_entries"`
		ProcessedAt string   `json:"processed_at"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type LogResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items []LogEntryDTO `json:"items"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type StatsResponse struct {
	Status string `json:"status"`
	Data   struct {
		Pending  int `json:"pending"`
		Approved int `json:"approved"`
		Rejected int `json:"rejected"`
		Flagged  int `json:"flagged"`
		Total    int `json:"total"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type PreviewURLResponse struct {
	Status string `json:"status"`
	Data   struct {
		URL       string `json:"url"`
		ExpiresAt string `json:"expires_at"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}
