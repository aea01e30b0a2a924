package dto

import "github.com/winnyineza/choir-tickets/internal/models"

// UpdateOperatorRoleRequest changes an operator's role.
type UpdateOperatorRoleRequest struct {
	OperatorID string              `json:"-"`
	Role       string              `json:"role" validate:"required,oneof=admin super_admin"`
	Actor      *models.OperatorRef `json:"-"`
	ActorRole  string              `json:"-"`
}

// SetOperatorActiveRequest activates or deactivates an operator account.
type SetOperatorActiveRequest struct {
	OperatorID string              `json:"-"`
	Active     bool                `json:"active"`
	Actor      *models.OperatorRef `json:"-"`
	ActorRole  string              `json:"-"`
}

// DeleteOperatorRequest hard-deletes an operator account.
type DeleteOperatorRequest struct {
	OperatorID string              `json:"-"`
	Actor      *models.OperatorRef `json:"-"`
	ActorRole  string              `json:"-"`
}
