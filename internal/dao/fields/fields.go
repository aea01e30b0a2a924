package fields

const (
	FieldObjectId  = "_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldUpdatedBy = "updated_by"
	FieldStatus    = "status"
	FieldActive    = "active"
	FieldName      = "name"
	FieldPhone     = "phone"

	FieldTierEvent       = "event"
	FieldTierPrice       = "price"
	FieldTierCapacity    = "capacity"
	FieldTierSold        = "sold"
	FieldTierMaxPerOrder = "max_per_order"

	FieldOrderEvent        = "event"
	FieldOrderBuyerEmail   = "buyer.email"
	FieldOrderPaymentRef   = "payment_ref"
	FieldOrderCheckinToken = "checkin_token"
	FieldOrderCancelReason = "cancel_reason"
	FieldOrderConfirmedAt  = "confirmed_at"
	FieldOrderCancelledAt  = "cancelled_at"
	FieldOrderUsedAt       = "used_at"
	FieldOrderCheckedInBy  = "checked_in_by"

	FieldOperatorEmail       = "email"
	FieldOperatorRole        = "role"
	FieldOperatorLastLoginAt = "last_login_at"

	FieldInviteCode      = "code"
	FieldInviteUsed      = "used"
	FieldInviteUsedAt    = "used_at"
	FieldInviteRevoked   = "revoked"
	FieldInviteExpiresAt = "expires_at"

	FieldStaffNationalID = "national_id"
	FieldStaffEvents     = "events"

	FieldAuditAt = "at"
)
