package entities

import (
	"strings"
	"time"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionFlag    Action = "flag"
	ActionUnflag  Action = "unflag"
	ActionReopen  Action = "reopen"
)

func ParseAction(raw string) (Action, bool) {
	action := Action(strings.ToLower(strings.TrimSpace(raw)))
	switch action {
	case ActionApprove, ActionReject, ActionFlag, ActionUnflag, ActionReopen:
		return action, true
	default:
		return "", false
	}
}

// Permission names mirror the access-control matrix. They are plain strings
// here so this context stays independent of the access-control packages.
const (
	PermissionCommentsView    = "comments.view"
	PermissionCommentsApprove = "comments.approve"
	PermissionCommentsReject  = "comments.reject"
	PermissionCommentsFlag    = "comments.flag"
	PermissionDocketsManage   = "dockets.manage"
)

// Actor is the resolved caller of a moderation operation.
type Actor struct {
	TenantID string
	ActorID  string
	Role     string
}

// LogEntry is an append-only audit record of one moderation transition.
type LogEntry struct {
	EntryID         string
	TenantID        string
	CommentID       string
	Action          Action
	ActorID         string
	Reason          string
	PreviousStatus  CommentStatus
	ResultingStatus CommentStatus
	CreatedAt       time.Time
}

// Stats are counts per status for one tenant, recomputed on every read.
type Stats struct {
	Counts map[CommentStatus]int
	Total  int
}
