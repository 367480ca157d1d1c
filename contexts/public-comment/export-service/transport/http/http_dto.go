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

type ExportFilter struct {
	Statuses           []string `json:"statuses,omitempty"`
	IncludeAllStatuses bool     `json:"include_all_statuses,omitempty"`
	SubmittedFrom      string   `json:"submitted_from,omitempty"`
	SubmittedTo        string   `json:"submitted_to,omitempty"`
	DocketIDs          []string `json:"docket_ids,omitempty"`
	ContentContains    string   `json:"content_contains,omitempty"`
	IncludeAttachments bool     `json:"include_attachments,omitempty"`
	MIMETypes          []string `json:"mime_types,omitempty"`
	MaxAttachmentBytes int64    `json:"max_attachment_bytes,omitempty"`
}

type CreateExportRequest struct {
	Type     string       `json:"type"`
	Filter   ExportFilter `json:"filter"`
	DocketID string       `json:"docket_id,omitempty"`
}

type ExportJobDTO struct {
	JobID        string       `json:"job_id"`
	Type         string       `json:"type"`
	Status       string       `json:"status"`
	Progress     int          `json:"progress"`
	Filter       ExportFilter `json:"filter"`
	DocketID     string       `json:"docket_id,omitempty"`
	ArtifactSize int64        `json:"artifact_size,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    string       `json:"created_at"`
	StartedAt    string       `json:"started_at,omitempty"`
	CompletedAt  string       `json:"completed_at,omitempty"`
	ExpiresAt    string       `json:"expires_at,omitempty"`
}

type ExportJobResponse struct {
	Status    string       `json:"status"`
	Data      ExportJobDTO `json:"data"`
	Timestamp string       `json:"timestamp"`
}

type ExportJobListResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items []ExportJobDTO `json:"items"`
		Limit int            `json:"limit"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type DownloadURLDTO struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
	FileName  string `json:"file_name"`
}

type DownloadURLResponse struct {
	Status    string         `json:"status"`
	Data      DownloadURLDTO `json:"data"`
	Timestamp string         `json:"timestamp"`
}

type DeleteExportResponse struct {
	Status string `json:"status"`
	Data   struct {
		JobID   string `json:"job_id"`
		Deleted bool   `json:"deleted"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}
