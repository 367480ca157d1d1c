package services

import (
	"fmt"

	"docketdesk/contexts/public-comment/moderation-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/moderation-service/domain/errors"
)

type transitionKey struct {
	from   entities.CommentStatus
	action entities.Action
}

// rejected has no outgoing transitions.
var transitions = map[transitionKey]entities.CommentStatus{
	{entities.CommentStatusPending, entities.ActionApprove}: entities.CommentStatusApproved,
	{entities.CommentStatusPending, entities.ActionReject}:  entities.CommentStatusRejected,
	{entities.CommentStatusPending, entities.ActionFlag}:    entities.CommentStatusFlagged,
	{entities.CommentStatusApproved, entities.ActionFlag}:   entities.CommentStatusFlagged,
	{entities.CommentStatusFlagged, entities.ActionUnflag}:  entities.CommentStatusApproved,
	{entities.CommentStatusFlagged, entities.ActionReopen}:  entities.CommentStatusPending,
}

// NextStatus returns the status a comment moves to when action is applied.
func NextStatus(current entities.CommentStatus, action entities.Action) (entities.CommentStatus, error) {
	next, ok := transitions[transitionKey{from: current, action: action}]
	if !ok {
		return "", fmt.Errorf("%w: %s from %s", domainerrors.ErrInvalidTransition, action, current)
	}
	return next, nil
}

func RequiredPermission(action entities.Action) (string, error) {
	switch action {
	case entities.ActionApprove:
		return entities.PermissionCommentsApprove, nil
	case entities.ActionReject:
		return entities.PermissionCommentsReject, nil
	case entities.ActionFlag, entities.ActionUnflag, entities.ActionReopen:
		return entities.PermissionCommentsFlag, nil
	default:
		return "", domainerrors.ErrInvalidAction
	}
}

// ComputeStats counts comments per status. Every known status is present in
// the result even when its count is zero.
func ComputeStats(comments []entities.Comment) entities.Stats {
	stats := entities.Stats{Counts: make(map[entities.CommentStatus]int, 4)}
	for _, status := range entities.CommentStatuses() {
		stats.Counts[status] = 0
	}
	for _, comment := range comments {
		stats.Counts[comment.Status]++
		stats.Total++
	}
	return stats
}
