package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"docketdesk/contexts/identity-access/access-control/domain/entities"
	domainerrors "docketdesk/contexts/identity-access/access-control/domain/errors"
	"docketdesk/contexts/identity-access/access-control/domain/services"
	"docketdesk/contexts/identity-access/access-control/ports"
)

const notifyTimeout = 30 * time.Second

type Service struct {
	Repo     ports.MembershipRepository
	Clock    ports.Clock
	IDs      ports.IDGenerator
	Notifier ports.Notifier
	Logger   *slog.Logger
}

type InviteInput struct {
	ActorID string
	Email   string
	Role    string
}

// ResolveActor maps an authenticated identity to its active role in a tenant.
func (s Service) ResolveActor(ctx context.Context, tenantID string, actorID string) (entities.Actor, error) {
	tenantID = strings.TrimSpace(tenantID)
	actorID = strings.TrimSpace(actorID)
	if tenantID == "" || actorID == "" {
		return entities.Actor{}, domainerrors.ErrInvalidRequest
	}
	membership, err := s.Repo.GetMembership(ctx, tenantID, actorID)
	if err != nil {
		return entities.Actor{}, err
	}
	if !membership.IsActive() {
		return entities.Actor{}, domainerrors.ErrMembershipNotFound
	}
	return entities.Actor{
		ActorID:  membership.ActorID,
		TenantID: membership.TenantID,
		Role:     membership.Role,
	}, nil
}

func (s Service) Authorize(actor entities.Actor, permission entities.Permission) error {
	return services.Require(actor.Role, permission)
}

func (s Service) AssignableRoles(actor entities.Actor) []entities.Role {
	return services.AssignableRoles(actor.Role)
}

// ProvisionOwner creates the first active owner of a tenant. It refuses to run
// on a tenant that already has members.
func (s Service) ProvisionOwner(ctx context.Context, tenantID string, actorID string, email string) (entities.Membership, error) {
	tenantID = strings.TrimSpace(tenantID)
	actorID = strings.TrimSpace(actorID)
	if tenantID == "" || actorID == "" {
		return entities.Membership{}, domainerrors.ErrInvalidRequest
	}
	existing, err := s.Repo.ListMemberships(ctx, ports.MembershipFilter{TenantID: tenantID})
	if err != nil {
		return entities.Membership{}, err
	}
	if len(existing) > 0 {
		return entities.Membership{}, domainerrors.ErrMembershipAlreadyExist
	}
	id, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.Membership{}, err
	}
	now := s.now()
	created, err := s.Repo.CreateMembership(ctx, entities.Membership{
		MembershipID: id,
		TenantID:     tenantID,
		ActorID:      actorID,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Role:         entities.RoleOwner,
		Status:       entities.MembershipStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
		UpdatedBy:    actorID,
		AcceptedAt:   &now,
	})
	if err != nil {
		return entities.Membership{}, err
	}
	ResolveLogger(s.Logger).Info("tenant owner provisioned",
		"event", "access_control_owner_provisioned",
		"module", "identity-access/access-control",
		"layer", "application",
		"tenant_id", tenantID,
		"actor_id", actorID,
	)
	return created, nil
}

func (s Service) Invite(ctx context.Context, actor entities.Actor, input InviteInput) (entities.Membership, error) {
	input.ActorID = strings.TrimSpace(input.ActorID)
	if input.ActorID == "" {
		return entities.Membership{}, domainerrors.ErrInvalidRequest
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return entities.Membership{}, err
	}
	role, ok := entities.ParseRole(input.Role)
	if !ok {
		return entities.Membership{}, domainerrors.ErrInvalidRole
	}
	if err := services.Require(actor.Role, entities.PermissionMembersInvite); err != nil {
		return entities.Membership{}, err
	}
	if !services.CanManageRole(actor.Role, role) {
		return entities.Membership{}, domainerrors.ErrRoleOutsideActorReach
	}

	id, err := s.IDs.NewID(ctx)
	if err != nil {
		return entities.Membership{}, err
	}
	now := s.now()
	created, err := s.Repo.CreateMembership(ctx, entities.Membership{
		MembershipID: id,
		TenantID:     actor.TenantID,
		ActorID:      input.ActorID,
		Email:        email,
		Role:         role,
		Status:       entities.MembershipStatusPending,
		InvitedBy:    actor.ActorID,
		CreatedAt:    now,
		UpdatedAt:    now,
		UpdatedBy:    actor.ActorID,
	})
	if err != nil {
		return entities.Membership{}, err
	}

	s.notifyAsync(ports.Notification{
		Kind:      "membership.invited",
		TenantID:  actor.TenantID,
		Recipient: email,
		Subject:   "You have been invited to a comment review workspace",
		Body:      fmt.Sprintf("You were invited as %s by %s. Accept the invitation to get started.", role, actor.ActorID),
	})
	ResolveLogger(s.Logger).Info("membership invited",
		"event", "access_control_membership_invited",
		"module", "identity-access/access-control",
		"layer", "application",
		"tenant_id", actor.TenantID,
		"actor_id", actor.ActorID,
		"invitee_id", input.ActorID,
		"role", string(role),
	)
	return created, nil
}

func (s Service) AcceptInvitation(ctx context.Context, tenantID string, actorID string) (entities.Membership, error) {
	tenantID = strings.TrimSpace(tenantID)
	actorID = strings.TrimSpace(actorID)
	if tenantID == "" || actorID == "" {
		return entities.Membership{}, domainerrors.ErrInvalidRequest
	}
	membership, err := s.Repo.GetMembership(ctx, tenantID, actorID)
	if err != nil {
		return entities.Membership{}, err
	}
	if membership.Status != entities.MembershipStatusPending {
		return entities.Membership{}, domainerrors.ErrMembershipNotPending
	}
	return s.Repo.ActivateMembership(ctx, tenantID, actorID, s.now())
}

// ChangeRole promotes or demotes a member. The ownership invariant is checked
// before the caller's own permissions so a sole owner can never be demoted,
// whoever asks.
func (s Service) ChangeRole(ctx context.Context, actor entities.Actor, targetActorID string, newRole string) (entities.Membership, error) {
	role, ok := entities.ParseRole(newRole)
	if !ok {
		return entities.Membership{}, domainerrors.ErrInvalidRole
	}
	target, err := s.loadTarget(ctx, actor, targetActorID)
	if err != nil {
		return entities.Membership{}, err
	}
	if err := s.guardOwnerContinuity(ctx, target, role, target.Status); err != nil {
		return entities.Membership{}, err
	}
	if err := s.requireManagement(actor, target, role); err != nil {
		return entities.Membership{}, err
	}
	if target.Status == entities.MembershipStatusDeactivated {
		return entities.Membership{}, domainerrors.ErrMembershipNotActive
	}
	if target.Role == role {
		return target, nil
	}

	updated, err := s.Repo.ApplyMembershipChange(ctx, ports.MembershipChange{
		TenantID:  actor.TenantID,
		ActorID:   target.ActorID,
		Role:      role,
		Status:    target.Status,
		UpdatedBy: actor.ActorID,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return entities.Membership{}, err
	}
	ResolveLogger(s.Logger).Info("membership role changed",
		"event", "access_control_role_changed",
		"module", "identity-access/access-control",
		"layer", "application",
		"tenant_id", actor.TenantID,
		"actor_id", actor.ActorID,
		"target_id", target.ActorID,
		"from_role", string(target.Role),
		"to_role", string(role),
	)
	return updated, nil
}

func (s Service) Deactivate(ctx context.Context, actor entities.Actor, targetActorID string) (entities.Membership, error) {
	target, err := s.loadTarget(ctx, actor, targetActorID)
	if err != nil {
		return entities.Membership{}, err
	}
	if err := s.guardOwnerContinuity(ctx, target, target.Role, entities.MembershipStatusDeactivated); err != nil {
		return entities.Membership{}, err
	}
	if err := s.requireManagement(actor, target, target.Role); err != nil {
		return entities.Membership{}, err
	}
	if target.Status == entities.MembershipStatusDeactivated {
		return target, nil
	}

	updated, err := s.Repo.ApplyMembershipChange(ctx, ports.MembershipChange{
		TenantID:  actor.TenantID,
		ActorID:   target.ActorID,
		Role:      target.Role,
		Status:    entities.MembershipStatusDeactivated,
		UpdatedBy: actor.ActorID,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return entities.Membership{}, err
	}
	ResolveLogger(s.Logger).Info("membership deactivated",
		"event", "access_control_membership_deactivated",
		"module", "identity-access/access-control",
		"layer", "application",
		"tenant_id", actor.TenantID,
		"actor_id", actor.ActorID,
		"target_id", target.ActorID,
	)
	return updated, nil
}

func (s Service) ListMembers(ctx context.Context, actor entities.Actor, status string) ([]entities.Membership, error) {
	if err := services.Require(actor.Role, entities.PermissionMembersView); err != nil {
		return nil, err
	}
	filter := ports.MembershipFilter{TenantID: actor.TenantID}
	switch entities.MembershipStatus(strings.ToLower(strings.TrimSpace(status))) {
	case "":
	case entities.MembershipStatusPending:
		filter.Status = entities.MembershipStatusPending
	case entities.MembershipStatusActive:
		filter.Status = entities.MembershipStatusActive
	case entities.MembershipStatusDeactivated:
		filter.Status = entities.MembershipStatusDeactivated
	default:
		return nil, domainerrors.ErrInvalidRequest
	}
	return s.Repo.ListMemberships(ctx, filter)
}

func (s Service) loadTarget(ctx context.Context, actor entities.Actor, targetActorID string) (entities.Membership, error) {
	targetActorID = strings.TrimSpace(targetActorID)
	if targetActorID == "" || strings.TrimSpace(actor.TenantID) == "" {
		return entities.Membership{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.GetMembership(ctx, actor.TenantID, targetActorID)
}

func (s Service) guardOwnerContinuity(
	ctx context.Context,
	target entities.Membership,
	role entities.Role,
	status entities.MembershipStatus,
) error {
	if !target.IsActiveOwner() {
		return nil
	}
	owners, err := s.Repo.CountActiveOwners(ctx, target.TenantID)
	if err != nil {
		return err
	}
	if err := services.CheckOwnerContinuity(target, role, status, owners); err != nil {
		ResolveLogger(s.Logger).Warn("sole owner change rejected",
			"event", "access_control_sole_owner_guard",
			"module", "identity-access/access-control",
			"layer", "application",
			"tenant_id", target.TenantID,
			"target_id", target.ActorID,
		)
		return err
	}
	return nil
}

func (s Service) requireManagement(actor entities.Actor, target entities.Membership, newRole entities.Role) error {
	if err := services.Require(actor.Role, entities.PermissionMembersManage); err != nil {
		return err
	}
	if !services.CanManageRole(actor.Role, target.Role) || !services.CanManageRole(actor.Role, newRole) {
		return domainerrors.ErrRoleOutsideActorReach
	}
	return nil
}

func (s Service) notifyAsync(notification ports.Notification) {
	if s.Notifier == nil {
		return
	}
	logger := ResolveLogger(s.Logger)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.Notifier.Notify(ctx, notification); err != nil {
			logger.Warn("notification delivery failed",
				"event", "access_control_notification_failed",
				"module", "identity-access/access-control",
				"layer", "application",
				"kind", notification.Kind,
				"tenant_id", notification.TenantID,
				"error", err.Error(),
			)
		}
	}()
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func normalizeEmail(raw string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "", domainerrors.ErrInvalidRequest
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return "", domainerrors.ErrInvalidRequest
	}
	return value, nil
}
