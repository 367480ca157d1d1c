package ports

import (
	"context"
	"time"

	"docketdesk/contexts/identity-access/access-control/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for new memberships.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// MembershipChange is applied atomically by the repository. Implementations
// must re-check owner continuity inside the same critical section and return
// ErrSoleOwner when the change would leave no active owner.
type MembershipChange struct {
	TenantID  string
	ActorID   string
	Role      entities.Role
	Status    entities.MembershipStatus
	UpdatedBy string
	UpdatedAt time.Time
}

type MembershipFilter struct {
	TenantID string
	Status   entities.MembershipStatus
}

// MembershipRepository is the persistence boundary for tenant memberships.
type MembershipRepository interface {
	GetMembership(ctx context.Context, tenantID string, actorID string) (entities.Membership, error)
	ListMemberships(ctx context.Context, filter MembershipFilter) ([]entities.Membership, error)
	CountActiveOwners(ctx context.Context, tenantID string) (int, error)
	CreateMembership(ctx context.Context, membership entities.Membership) (entities.Membership, error)
	ActivateMembership(ctx context.Context, tenantID string, actorID string, now time.Time) (entities.Membership, error)
	ApplyMembershipChange(ctx context.Context, change MembershipChange) (entities.Membership, error)
}

type Notification struct {
	Kind      string
	TenantID  string
	Recipient string
	Subject   string
	Body      string
}

// Notifier is the external email collaborator. Calls are fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}
