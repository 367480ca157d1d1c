package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"docketdesk/contexts/identity-access/access-control/application"
	"docketdesk/contexts/identity-access/access-control/domain/entities"
	httptransport "docketdesk/contexts/identity-access/access-control/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListMembersHandler(ctx context.Context, tenantID string, userID string, status string) (httptransport.MemberListResponse, error) {
	actor, err := h.Service.ResolveActor(ctx, tenantID, userID)
	if err != nil {
		return httptransport.MemberListResponse{}, err
	}
	items, err := h.Service.ListMembers(ctx, actor, status)
	if err != nil {
		return httptransport.MemberListResponse{}, err
	}
	resp := httptransport.MemberListResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.Items = make([]httptransport.MemberDTO, 0, len(items))
	for _, item := range items {
		resp.Data.Items = append(resp.Data.Items, mapMember(item))
	}
	return resp, nil
}

func (h Handler) AssignableRolesHandler(ctx context.Context, tenantID string, userID string) (httptransport.AssignableRolesResponse, error) {
	actor, err := h.Service.ResolveActor(ctx, tenantID, userID)
	if err != nil {
		return httptransport.AssignableRolesResponse{}, err
	}
	resp := httptransport.AssignableRolesResponse{Status: "success", Timestamp: nowRFC3339()}
	resp.Data.ActorRole = string(actor.Role)
	resp.Data.Roles = make([]string, 0, 4)
	for _, role := range h.Service.AssignableRoles(actor) {
		resp.Data.Roles = append(resp.Data.Roles, string(role))
	}
	return resp, nil
}

func (h Handler) InviteHandler(ctx context.Context, tenantID string, userID string, req httptransport.InviteMemberRequest) (httptransport.MemberResponse, error) {
	actor, err := h.Service.ResolveActor(ctx, tenantID, userID)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	membership, err := h.Service.Invite(ctx, actor, application.InviteInput{
		ActorID: strings.TrimSpace(req.ActorID),
		Email:   strings.TrimSpace(req.Email),
		Role:    strings.TrimSpace(req.Role),
	})
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return memberResponse(membership), nil
}

// AcceptInvitationHandler does not resolve an actor: the caller still holds a
// pending membership at this point.
func (h Handler) AcceptInvitationHandler(ctx context.Context, tenantID string, userID string) (httptransport.MemberResponse, error) {
	membership, err := h.Service.AcceptInvitation(ctx, tenantID, userID)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return memberResponse(membership), nil
}

func (h Handler) ChangeRoleHandler(ctx context.Context, tenantID string, userID string, targetActorID string, req httptransport.ChangeRoleRequest) (httptransport.MemberResponse, error) {
	actor, err := h.Service.ResolveActor(ctx, tenantID, userID)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	membership, err := h.Service.ChangeRole(ctx, actor, targetActorID, req.Role)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return memberResponse(membership), nil
}

func (h Handler) DeactivateHandler(ctx context.Context, tenantID string, userID string, targetActorID string) (httptransport.MemberResponse, error) {
	actor, err := h.Service.ResolveActor(ctx, tenantID, userID)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	membership, err := h.Service.Deactivate(ctx, actor, targetActorID)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return memberResponse(membership), nil
}

func memberResponse(membership entities.Membership) httptransport.MemberResponse {
	return httptransport.MemberResponse{
		Status:    "success",
		Data:      mapMember(membership),
		Timestamp: nowRFC3339(),
	}
}

func mapMember(item entities.Membership) httptransport.MemberDTO {
	dto := httptransport.MemberDTO{
		MembershipID: item.MembershipID,
		TenantID:     item.TenantID,
		ActorID:      item.ActorID,
		Email:        item.Email,
		Role:         string(item.Role),
		Status:       string(item.Status),
		InvitedBy:    item.InvitedBy,
		CreatedAt:    item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    item.UpdatedAt.UTC().Format(time.RFC3339),
		UpdatedBy:    item.UpdatedBy,
	}
	if item.AcceptedAt != nil {
		dto.AcceptedAt = item.AcceptedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
