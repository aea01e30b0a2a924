package mongodb

const (
	CollectionTiers     = "ticket_tiers"
	CollectionOrders    = "orders"
	CollectionOperators = "operators"
	CollectionInvites   = "invites"
	CollectionStaff     = "event_staff"
	CollectionAuditLogs = "audit_logs"
	CollectionOutbox    = "outbox"
)
