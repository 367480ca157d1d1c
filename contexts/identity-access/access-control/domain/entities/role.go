package entities

import "strings"

// Role is a ranked tenant role. Rank comparison replaces any notion of one
// role "being" another.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleReviewer Role = "reviewer"
	RoleViewer   Role = "viewer"
)

// rolesByRank lists every role highest rank first.
var rolesByRank = [...]Role{RoleOwner, RoleAdmin, RoleManager, RoleReviewer, RoleViewer}

// Roles returns all roles ordered from highest to lowest rank.
func Roles() []Role {
	out := make([]Role, len(rolesByRank))
	copy(out, rolesByRank[:])
	return out
}

// Rank returns the numeric rank of the role, -1 for unknown roles.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleReviewer:
		return 1
	case RoleViewer:
		return 0
	default:
		return -1
	}
}

func (r Role) Valid() bool {
	return r.Rank() >= 0
}

func (r Role) Outranks(other Role) bool {
	return r.Rank() > other.Rank()
}

func (r Role) String() string {
	return string(r)
}

func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", false
	}
	return role, true
}
