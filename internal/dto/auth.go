package dto

import (
	"time"

	"github.com/winnyineza/choir-tickets/internal/models"
)

// LoginRequest is the operator credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Remember bool   `json:"remember"`
}

// LoginResponse returns the session token and its hard expiry.
type LoginResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	Remember  bool                `json:"remember"`
	Operator  *models.OperatorRef `json:"operator"`
	Role      string              `json:"role"`
}

// Session is the authenticated operator attached to a request context.
type Session struct {
	Operator  models.OperatorRef
	Role      string
	Remember  bool
	ExpiresAt time.Time
}
