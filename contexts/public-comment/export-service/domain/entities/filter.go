package entities

import "time"

// FilterSpec is the caller-supplied export filter, stored verbatim with the
// job and resolved by the worker.
type FilterSpec struct {
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

// ResolvedFilter is a validated, concrete query over comments. Empty sets
// mean no restriction except for Statuses, which is never empty.
type ResolvedFilter struct {
	Statuses           []string
	SubmittedFrom      *time.Time
	SubmittedTo        *time.Time
	DocketIDs          []string
	ContentContains    string
	IncludeAttachments bool
	MIMETypes          []string
	MaxAttachmentBytes int64
}

// SourceAttachment is an attachment as seen by the export reader.
type SourceAttachment struct {
	AttachmentID string
	FileName     string
	ContentType  string
	SizeBytes    int64
	StoragePath  string
}

// SourceComment is one comment joined with its docket, ready for export.
type SourceComment struct {
	CommentID             string
	TenantID              string
	DocketID              string
	DocketTitle           string
	DocketReference       string
	CommenterName         string
	CommenterEmail        string
	CommenterOrganization string
	Content               string
	Status                string
	Attachments           []SourceAttachment
	SubmittedAt           time.Time
	UpdatedAt             time.Time
}
