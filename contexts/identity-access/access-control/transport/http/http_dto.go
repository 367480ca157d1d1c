package http

type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Status    string    `json:"status"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

type InviteMemberRequest struct {
	ActorID string `json:"actor_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type MemberDTO struct {
	MembershipID string `json:"membership_id"`
	TenantID     string `json:"tenant_id"`
	ActorID      string `json:"actor_id"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	InvitedBy    string `json:"invited_by,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	UpdatedBy    string `json:"updated_by,omitempty"`
	AcceptedAt   string `json:"accepted_at,omitempty"`
}

type MemberResponse struct {
	Status    string    `json:"status"`
	Data      MemberDTO `json:"data"`
	Timestamp string    `json:"timestamp"`
}

type MemberListResponse struct {
	Status string `json:"status"`
	Data   struct {
		Items []MemberDTO `json:"items"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type AssignableRolesResponse struct {
	Status string `json:"status"`
	Data   struct {
		ActorRole string   `json:"actor_role"`
		Roles     []string `json:"roles"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}
