package bootstrap

import (
	"context"
	"errors"
	"fmt"

	accessapp "docketdesk/contexts/identity-access/access-control/application"
	accessentities "docketdesk/contexts/identity-access/access-control/domain/entities"
	accesserrors "docketdesk/contexts/identity-access/access-control/domain/errors"
	accessservices "docketdesk/contexts/identity-access/access-control/domain/services"
	accessports "docketdesk/contexts/identity-access/access-control/ports"
	exportentities "docketdesk/contexts/public-comment/export-service/domain/entities"
	exporterrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	exportports "docketdesk/contexts/public-comment/export-service/ports"
	moderationentities "docketdesk/contexts/public-comment/moderation-service/domain/entities"
	moderationerrors "docketdesk/contexts/public-comment/moderation-service/domain/errors"
	moderationports "docketdesk/contexts/public-comment/moderation-service/ports"
	"docketdesk/internal/platform/notify"
)

// Contexts never import each other; the adapters below translate between
// their ports here at the composition root.

// accessPolicy serves the static role/permission matrix to other contexts.
type accessPolicy struct{}

func (accessPolicy) Authorize(role string, permission string) bool {
	return accessservices.Authorize(accessentities.Role(role), accessentities.Permission(permission))
}

func (accessPolicy) ExplainDenial(permission string, role string) string {
	return accessservices.ExplainDenial(accessentities.Permission(permission), accessentities.Role(role))
}

type moderationActors struct {
	access accessapp.Service
}

func (a moderationActors) ResolveActor(ctx context.Context, tenantID string, actorID string) (moderationentities.Actor, error) {
	actor, err := a.access.ResolveActor(ctx, tenantID, actorID)
	if err != nil {
		return moderationentities.Actor{}, translateResolveError(err,
			moderationerrors.ErrInvalidRequest,
			moderationerrors.ErrNotFound,
			moderationerrors.ErrTransientStore,
		)
	}
	return moderationentities.Actor{TenantID: actor.TenantID, ActorID: actor.ActorID, Role: string(actor.Role)}, nil
}

type exportActors struct {
	access accessapp.Service
}

func (a exportActors) ResolveActor(ctx context.Context, tenantID string, actorID string) (exportentities.Actor, error) {
	actor, err := a.access.ResolveActor(ctx, tenantID, actorID)
	if err != nil {
		return exportentities.Actor{}, translateResolveError(err,
			exporterrors.ErrInvalidRequest,
			exporterrors.ErrNotFound,
			exporterrors.ErrTransientStore,
		)
	}
	return exportentities.Actor{TenantID: actor.TenantID, ActorID: actor.ActorID, Role: string(actor.Role)}, nil
}

// translateResolveError maps membership lookup failures onto the calling
// context's sentinels. Unknown callers read as not found so tenant membership
// is not disclosed.
func translateResolveError(err error, invalid error, notFound error, transient error) error {
	switch {
	case errors.Is(err, accesserrors.ErrValidation):
		return fmt.Errorf("%w: tenant and user are required", invalid)
	case errors.Is(err, accesserrors.ErrNotFound):
		return fmt.Errorf("%w: membership", notFound)
	default:
		return fmt.Errorf("%w: resolve actor: %w", transient, err)
	}
}

// mailer adapts a notify.Sender to each context's Notifier port.
type mailer struct {
	sender notify.Sender
}

func (m mailer) send(ctx context.Context, msg notify.Message) error {
	if m.sender == nil {
		return nil
	}
	return m.sender.Send(ctx, msg)
}

type accessMailer struct{ mailer }

func (m accessMailer) Notify(ctx context.Context, n accessports.Notification) error {
	return m.send(ctx, notify.Message{Kind: n.Kind, TenantID: n.TenantID, Recipient: n.Recipient, Subject: n.Subject, Body: n.Body})
}

type moderationMailer struct{ mailer }

func (m moderationMailer) Notify(ctx context.Context, n moderationports.Notification) error {
	return m.send(ctx, notify.Message{Kind: n.Kind, TenantID: n.TenantID, Recipient: n.Recipient, Subject: n.Subject, Body: n.Body})
}

// moderationCommentSource feeds the export worker from the moderation
// repository when no SQL store is configured.
type moderationCommentSource struct {
	repo moderationports.Repository
}

func (s moderationCommentSource) ListExportComments(ctx context.Context, tenantID string, _ exportentities.ResolvedFilter) ([]exportentities.SourceComment, error) {
	dockets, err := s.repo.ListDockets(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]moderationentities.Docket, len(dockets))
	for _, docket := range dockets {
		byID[docket.DocketID] = docket
	}
	comments, err := s.repo.ListTenantComments(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]exportentities.SourceComment, 0, len(comments))
	for _, comment := range comments {
		docket := byID[comment.DocketID]
		item := exportentities.SourceComment{
			CommentID:             comment.CommentID,
			TenantID:              comment.TenantID,
			DocketID:              comment.DocketID,
			DocketTitle:           docket.Title,
			DocketReference:       docket.Reference,
			CommenterName:         comment.CommenterName,
			CommenterEmail:        comment.CommenterEmail,
			CommenterOrganization: comment.CommenterOrganization,
			Content:               comment.Content,
			Status:                string(comment.Status),
			SubmittedAt:           comment.SubmittedAt,
			UpdatedAt:             comment.UpdatedAt,
		}
		for _, attachment := range comment.Attachments {
			item.Attachments = append(item.Attachments, exportentities.SourceAttachment{
				AttachmentID: attachment.AttachmentID,
				FileName:     attachment.FileName,
				ContentType:  attachment.ContentType,
				SizeBytes:    attachment.SizeBytes,
				StoragePath:  attachment.StoragePath,
			})
		}
		out = append(out, item)
	}
	return out, nil
}

var (
	_ moderationports.AccessPolicy  = accessPolicy{}
	_ exportports.AccessPolicy      = accessPolicy{}
	_ moderationports.ActorResolver = moderationActors{}
	_ exportports.ActorResolver     = exportActors{}
	_ accessports.Notifier          = accessMailer{}
	_ moderationports.Notifier      = moderationMailer{}
	_ exportports.CommentSource     = moderationCommentSource{}
)
