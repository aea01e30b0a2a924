package constants

type OrderStatus int

const (
	OrderStatusUnknown OrderStatus = iota
	OrderStatusPending
	OrderStatusConfirmed
	OrderStatusCancelled
	OrderStatusUsed
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusConfirmed:
		return "confirmed"
	case OrderStatusCancelled:
		return "cancelled"
	case OrderStatusUsed:
		return "used"
	default:
		return "unknown"
	}
}

var orderStatusMap = map[string]OrderStatus{
	"pending":   OrderStatusPending,
	"confirmed": OrderStatusConfirmed,
	"cancelled": OrderStatusCancelled,
	"used":      OrderStatusUsed,
	"unknown":   OrderStatusUnknown,
}

func ParseOrderStatus(s string) OrderStatus {
	if status, ok := orderStatusMap[s]; ok {
		return status
	}
	return OrderStatusUnknown
}

// Terminal reports whether no further transition may leave this status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusUsed
}
