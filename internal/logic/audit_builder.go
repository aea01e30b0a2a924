package logic

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/models"
)

// AuditLogOption defines a function that configures an AuditLogEntry.
type AuditLogOption func(*models.AuditLogEntry)

// WithDetail attaches a free-form note to an audit entry.
func WithDetail(detail string) AuditLogOption {
	return func(entry *models.AuditLogEntry) {
		if detail != "" {
			entry.Detail = detail
		}
	}
}

// NewAuditLog is the shared constructor for audit entries. Before/after
// snapshots go into Changes so the trail can show what a privileged action
// touched.
func NewAuditLog(operator *models.OperatorRef, action string, before, after interface{}, opts ...AuditLogOption) *models.AuditLogEntry {
	entry := &models.AuditLogEntry{
		ID:       primitive.NewObjectID(),
		Operator: *operator,
		Action:   action,
		Changes: map[string]interface{}{
			"before": before,
			"after":  after,
		},
		At: time.Now(),
	}

	for _, opt := range opts {
		opt(entry)
	}

	return entry
}

func buildAddTierAuditLog(operator *models.OperatorRef, tier *models.TicketTier) *models.AuditLogEntry {
	return NewAuditLog(operator, "CREATE_TIER", nil, tier)
}

func buildUpdateTierAuditLog(operator *models.OperatorRef, before, after *models.TicketTier) *models.AuditLogEntry {
	return NewAuditLog(operator, "UPDATE_TIER", before, after)
}

func buildConfirmOrderAuditLog(operator *models.OperatorRef, before *models.Order, paymentRef string) *models.AuditLogEntry {
	after := *before
	after.Status = "confirmed"
	after.PaymentRef = paymentRef
	return NewAuditLog(operator, "CONFIRM_ORDER", before, &after)
}

func buildCancelOrderAuditLog(operator *models.OperatorRef, before *models.Order, reason string) *models.AuditLogEntry {
	after := *before
	after.Status = "cancelled"
	after.CancelReason = reason
	return NewAuditLog(operator, "CANCEL_ORDER", before, &after, WithDetail(reason))
}

func buildIssueInviteAuditLog(operator *models.OperatorRef, invite *models.Invite) *models.AuditLogEntry {
	// Never put the raw code in the trail.
	redacted := *invite
	redacted.Code = ""
	return NewAuditLog(operator, "ISSUE_INVITE", nil, &redacted)
}

func buildRevokeInviteAuditLog(operator *models.OperatorRef, invite *models.Invite) *models.AuditLogEntry {
	redacted := *invite
	redacted.Code = ""
	return NewAuditLog(operator, "REVOKE_INVITE", &redacted, nil)
}

func buildUpdateOperatorRoleAuditLog(actor *models.OperatorRef, target *models.Operator, newRole string) *models.AuditLogEntry {
	before := map[string]interface{}{"role": target.Role}
	after := map[string]interface{}{"role": newRole}
	return NewAuditLog(actor, "UPDATE_OPERATOR_ROLE", before, after, WithDetail(target.Email))
}

func buildSetOperatorActiveAuditLog(actor *models.OperatorRef, target *models.Operator, active bool) *models.AuditLogEntry {
	before := map[string]interface{}{"active": target.Active}
	after := map[string]interface{}{"active": active}
	return NewAuditLog(actor, "SET_OPERATOR_ACTIVE", before, after, WithDetail(target.Email))
}

// buildFailedLoginAuditLog records a rejected login. A miss on an unknown
// email carries the zero operator id; the attempted address goes in Name so
// the trail still shows who was targeted.
func buildFailedLoginAuditLog(email string, operatorID primitive.ObjectID, reason string) *models.AuditLogEntry {
	actor := &models.OperatorRef{ID: operatorID, Name: email}
	return NewAuditLog(actor, "LOGIN_FAILED", nil, nil, WithDetail(reason))
}

func buildDeniedSessionAuditLog(operator *models.OperatorRef, reason string) *models.AuditLogEntry {
	return NewAuditLog(operator, "SESSION_DENIED", nil, nil, WithDetail(reason))
}

func buildDeleteOperatorAuditLog(actor *models.OperatorRef, target *models.Operator) *models.AuditLogEntry {
	return NewAuditLog(actor, "DELETE_OPERATOR", target, nil, WithDetail(target.Email))
}

func buildAddStaffAuditLog(operator *models.OperatorRef, staff *models.EventStaff) *models.AuditLogEntry {
	return NewAuditLog(operator, "CREATE_STAFF", nil, staff)
}

func buildAssignStaffAuditLog(operator *models.OperatorRef, staff *models.EventStaff, events []primitive.ObjectID) *models.AuditLogEntry {
	before := map[string]interface{}{"events": staff.Events}
	after := map[string]interface{}{"events": events}
	return NewAuditLog(operator, "ASSIGN_STAFF", before, after, WithDetail(staff.Name))
}

func buildSetStaffActiveAuditLog(operator *models.OperatorRef, staff *models.EventStaff, active bool) *models.AuditLogEntry {
	before := map[string]interface{}{"active": staff.Active}
	after := map[string]interface{}{"active": active}
	return NewAuditLog(operator, "SET_STAFF_ACTIVE", before, after, WithDetail(staff.Name))
}
