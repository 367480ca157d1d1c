package entities

import "time"

type MembershipStatus string

const (
	MembershipStatusPending     MembershipStatus = "pending"
	MembershipStatusActive      MembershipStatus = "active"
	MembershipStatusDeactivated MembershipStatus = "deactivated"
)

// Membership binds an actor to a tenant with a role. Memberships are only
// ever soft-transitioned; they are never hard-deleted.
type Membership struct {
	MembershipID string           `json:"membership_id"`
	TenantID     string           `json:"tenant_id"`
	ActorID      string           `json:"actor_id"`
	Email        string           `json:"email"`
	Role         Role             `json:"role"`
	Status       MembershipStatus `json:"status"`
	InvitedBy    string           `json:"invited_by,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	UpdatedBy    string           `json:"updated_by,omitempty"`
	AcceptedAt   *time.Time       `json:"accepted_at,omitempty"`
}

func (m Membership) IsActive() bool {
	return m.Status == MembershipStatusActive
}

func (m Membership) IsActiveOwner() bool {
	return m.IsActive() && m.Role == RoleOwner
}

// Actor is an authenticated identity resolved to its role within a tenant.
type Actor struct {
	ActorID  string `json:"actor_id"`
	TenantID string `json:"tenant_id"`
	Role     Role   `json:"role"`
}
