package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"docketdesk/contexts/public-comment/moderation-service/application"
	"docketdesk/contexts/public-comment/moderation-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/moderation-service/domain/errors"
	"docketdesk/contexts/public-comment/moderation-service/ports"
	httptransport "docketdesk/contexts/public-comment/moderation-service/transport/http"
)

type Handler struct {
	Service application.Service
	Actors  ports.ActorResolver
	Logger  *slog.Logger
}

func (h Handler) resolve(ctx context.Context, tenantID string, userID string) (entities.Actor, error) {
	if h.Actors == nil {
		return entities.Actor{}, domainerrors.ErrDependencyUnavailable
	}
	return h.Actors.ResolveActor(ctx, strings.TrimSpace(tenantID), strings.TrimSpace(userID))
}

func (h Handler) CreateDocketHandler(ctx context.Context, tenantID string, userID string, req httptransport.CreateDocketRequest) (httptransport.DocketResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.DocketResponse{}, err
	}
	opensAt, err := parseOptionalTime(req.OpensAt)
	if err != nil {
		return httptransport.DocketResponse{}, err
	}
	closesAt, err := parseOptionalTime(req.ClosesAt)
	if err != nil {
		return httptransport.DocketResponse{}, err
	}
	docket, err := h.Service.CreateDocket(ctx, actor, application.CreateDocketInput{
		Title:     req.Title,
		Reference: req.Reference,
		OpensAt:   opensAt,
		ClosesAt:  closesAt,
	})
	if err != nil {
		return httptransport.DocketResponse{}, err
	}
	return httptransport.DocketResponse{Status: "success", Data: mapDocket(docket), Timestamp: nowRFC3339()}, nil
}

func (h Handler) ListDocketsHandler(ctx context.Context, tenantID string, userID string) (httptransport.DocketListResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.DocketListResponse{}, err
	}
	items, err := h.Service.ListDockets(ctx, actor)
	if err != nil {
		return httptransport.DocketListResponse{}, err
	}
	resp := httptransport.DocketListResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.Items = make([]httptransport.DocketDTO, 0, len(items))
	for _, item := range items {
		resp.Data.Items = append(resp.Data.Items, mapDocket(item))
	}
	return resp, nil
}

func (h Handler) SubmitCommentHandler(ctx context.Context, tenantID string, docketID string, req httptransport.SubmitCommentRequest) (httptransport.CommentResponse, error) {
	input := application.SubmitCommentInput{
		CommenterName:         req.CommenterName,
		CommenterEmail:        req.CommenterEmail,
		CommenterOrganization: req.CommenterOrganization,
		Content:               req.Content,
		Attachments:           make([]application.AttachmentUpload, 0, len(req.Attachments)),
	}
	for _, item := range req.Attachments {
		input.Attachments = append(input.Attachments, application.AttachmentUpload{
			FileName:    item.FileName,
			ContentType: item.ContentType,
			Data:        item.Data,
		})
	}
	comment, err := h.Service.SubmitComment(ctx, tenantID, docketID, input)
	if err != nil {
		return httptransport.CommentResponse{}, err
	}
	return httptransport.CommentResponse{Status: "success", Data: mapComment(comment), Timestamp: nowRFC3339()}, nil
}

func (h Handler) ListCommentsHandler(ctx context.Context, tenantID string, userID string, docketID string, status string, limitRaw string, offsetRaw string) (httptransport.CommentListResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.CommentListResponse{}, err
	}
	input := application.ListCommentsInput{DocketID: docketID, Status: status}
	if parsed, err := strconv.Atoi(strings.TrimSpace(limitRaw)); err == nil {
		input.Limit = parsed
	}
	if parsed, err := strconv.Atoi(strings.TrimSpace(offsetRaw)); err == nil {
		input.Offset = parsed
	}
	items, err := h.Service.ListComments(ctx, actor, input)
	if err != nil {
		return httptransport.CommentListResponse{}, err
	}
	resp := httptransport.CommentListResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.Items = make([]httptransport.CommentDTO, 0, len(items))
	for _, item := range items {
		resp.Data.Items = append(resp.Data.Items, mapComment(item))
	}
	resp.Data.Limit = input.Limit
	resp.Data.Offset = input.Offset
	return resp, nil
}

func (h Handler) GetCommentHandler(ctx context.Context, tenantID string, userID string, commentID string) (httptransport.CommentResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.CommentResponse{}, err
	}
	comment, err := h.Service.GetComment(ctx, actor, commentID)
	if err != nil {
		return httptransport.CommentResponse{}, err
	}
	return httptransport.CommentResponse{Status: "success", Data: mapComment(comment), Timestamp: nowRFC3339()}, nil
}

func (h Handler) ListLogHandler(ctx context.Context, tenantID string, userID string, commentID string) (httptransport.LogResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.LogResponse{}, err
	}
	items, err := h.Service.ListLog(ctx, actor, commentID)
	if err != nil {
		return httptransport.LogResponse{}, err
	}
	resp := httptransport.LogResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.Items = make([]httptransport.LogEntryDTO, 0, len(items))
	for _, item := range items {
		resp.Data.Items = append(resp.Data.Items, mapLogEntry(item))
	}
	return resp, nil
}

func (h Handler) ModerateHandler(ctx context.Context, tenantID string, userID string, idempotencyKey string, commentID string, req httptransport.ModerateRequest) (httptransport.ModerateResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.ModerateResponse{}, err
	}
	result, err := h.Service.Moderate(ctx, actor, idempotencyKey, application.ModerateInput{
		CommentID: commentID,
		Action:    req.Action,
		Reason:    req.Reason,
	})
	if err != nil {
		return httptransport.ModerateResponse{}, err
	}
	resp := httptransport.ModerateResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.Comment = mapComment(result.Comment)
	if result.LogEntry != nil {
		entry := mapLogEntry(*result.LogEntry)
		resp.Data.LogEntry = &entry
	}
	return resp, nil
}

func (h Handler) BulkModerateHandler(ctx context.Context, tenantID string, userID string, idempotencyKey string, req httptransport.BulkModerateRequest) (httptransport.BulkModerateResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.BulkModerateResponse{}, err
	}
	result, err := h.Service.BulkModerate(ctx, actor, idempotencyKey, application.BulkModerateInput{
		CommentIDs: req.CommentIDs,
		Action:     req.Action,
		Reason:     req.Reason,
	})
	if err != nil {
		return httptransport.BulkModerateResponse{}, err
	}
	resp := httptransport.BulkModerateResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.Action = string(result.Action)
	resp.Data.NewStatus = string(result.Status)
	resp.Data.CommentIDs = make([]string, 0, len(result.Comments))
	for _, item := range result.Comments {
		resp.Data.CommentIDs = append(resp.Data.CommentIDs, item.CommentID)
	}
	resp.Data.Updated = len(result.Comments)
	resp.Data.LogEntries = result.LogEntries
	resp.Data.ProcessedAt = result.ProcessedAt.UTC().Format(time.RFC3339)
	return resp, nil
}

func (h Handler) StatsHandler(ctx context.Context, tenantID string, userID string) (httptransport.StatsResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.StatsResponse{}, err
	}
	stats, err := h.Service.Stats(ctx, actor)
	if err != nil {
		return httptransport.StatsResponse{}, err
	}
	resp := httptransport.StatsResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.Pending = stats.Counts[entities.CommentStatusPending]
	resp.Data.Approved = stats.Counts[entities.CommentStatusApproved]
	resp.Data.Rejected = stats.Counts[entities.CommentStatusRejected]
	resp.Data.Flagged = stats.Counts[entities.CommentStatusFlagged]
	resp.Data.Total = stats.Total
	return resp, nil
}

func (h Handler) AttachmentPreviewHandler(ctx context.Context, tenantID string, userID string, commentID string, attachmentID string) (httptransport.PreviewURLResponse, error) {
	actor, err := h.resolve(ctx, tenantID, userID)
	if err != nil {
		return httptransport.PreviewURLResponse{}, err
	}
	url, expiresAt, err := h.Service.AttachmentPreviewURL(ctx, actor, commentID, attachmentID)
	if err != nil {
		return httptransport.PreviewURLResponse{}, err
	}
	resp := httptransport.PreviewURLResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.URL = url
	resp.Data.ExpiresAt = expiresAt.UTC().Format(time.RFC3339)
	return resp, nil
}

func mapDocket(item entities.Docket) httptransport.DocketDTO {
	return httptransport.DocketDTO{
		DocketID:  item.DocketID,
		Title:     item.Title,
		Reference: item.Reference,
		Status:    string(item.Status),
		OpensAt:   formatOptionalTime(item.OpensAt),
		ClosesAt:  formatOptionalTime(item.ClosesAt),
		CreatedBy: item.CreatedBy,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapComment(item entities.Comment) httptransport.CommentDTO {
	dto := httptransport.CommentDTO{
		CommentID:             item.CommentID,
		DocketID:              item.DocketID,
		CommenterName:         item.CommenterName,
		CommenterEmail:        item.CommenterEmail,
		CommenterOrganization: item.CommenterOrganization,
		Content:               item.Content,
		Status:                string(item.Status),
		Attachments:           make([]httptransport.AttachmentDTO, 0, len(item.Attachments)),
		SubmittedAt:           item.SubmittedAt.UTC().Format(time.RFC3339),
		UpdatedAt:             item.UpdatedAt.UTC().Format(time.RFC3339),
		UpdatedBy:             item.UpdatedBy,
	}
	for _, attachment := range item.Attachments {
		dto.Attachments = append(dto.Attachments, httptransport.AttachmentDTO{
			AttachmentID: attachment.AttachmentID,
			FileName:     attachment.FileName,
			ContentType:  attachment.ContentType,
			SizeBytes:    attachment.SizeBytes,
		})
	}
	return dto
}

func mapLogEntry(item entities.LogEntry) httptransport.LogEntryDTO {
	return httptransport.LogEntryDTO{
		EntryID:         item.EntryID,
		CommentID:       item.CommentID,
		Action:          string(item.Action),
		ActorID:         item.ActorID,
		Reason:          item.Reason,
		PreviousStatus:  string(item.PreviousStatus),
		ResultingStatus: string(item.ResultingStatus),
		CreatedAt:       item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamps must be RFC 3339", domainerrors.ErrValidation)
	}
	parsed = parsed.UTC()
	return &parsed, nil
}

func formatOptionalTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
