package logic

import "errors"

var (
	ErrValidationFailed     = errors.New("request validation failed")
	ErrTierNotFound         = errors.New("ticket tier not found")
	ErrOutOfStock           = errors.New("not enough seats remaining")
	ErrExceedsPerOrderLimit = errors.New("quantity exceeds the per-order limit")
	ErrCapacityBelowSold    = errors.New("capacity cannot drop below the sold count")

	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("order is in a terminal state")
	ErrOrderExpired       = errors.New("order reservation has expired")
	ErrOrderNotConfirmed  = errors.New("order is not confirmed")
	ErrTicketAlreadyUsed  = errors.New("ticket has already been used")
	ErrInvalidToken       = errors.New("admission token is invalid")
	ErrStaffNotAuthorized = errors.New("staff member is not assigned to this event")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrSessionExpired     = errors.New("session has expired")
	ErrInsufficientRole   = errors.New("insufficient role")
	ErrProtectedOperator  = errors.New("operation not allowed on this operator")

	ErrInviteNotFound    = errors.New("invite not found")
	ErrInviteExpired     = errors.New("invite has expired")
	ErrInviteAlreadyUsed = errors.New("invite has already been used")
	ErrInviteRevoked     = errors.New("invite has been revoked")
	ErrEmailTaken        = errors.New("an operator with this email already exists")

	// ErrPermanent marks consumer failures that must not be retried.
	ErrPermanent = errors.New("a permanent error occurred that should not be retried")
)
