package dto

import "github.com/winnyineza/choir-tickets/internal/models"

// IssueInviteRequest creates a one-time operator invite.
type IssueInviteRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=120"`
	Role     string `json:"role" validate:"required,oneof=admin super_admin"`
	MemberID string `json:"member_id" validate:"omitempty,len=24,hexadecimal"`
}

// AcceptInviteRequest consumes an invite code and sets the first password.
type AcceptInviteRequest struct {
	Code     string `json:"code" validate:"required,uuid4"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// IssueInviteResponse returns the generated code for delivery to the member.
type IssueInviteResponse struct {
	InviteID string `json:"invite_id"`
	Code     string `json:"code"`
}

// AcceptInviteResponse returns the freshly provisioned operator.
type AcceptInviteResponse struct {
	Operator *models.OperatorRef `json:"operator"`
	Role     string              `json:"role"`
}
