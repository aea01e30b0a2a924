package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/constants"
	"github.com/winnyineza/choir-tickets/internal/models"
)

// --- Parameter Structs ---

type ConfirmOrderParams struct {
	OrderID      primitive.ObjectID
	PaymentRef   string
	CheckinToken string
	ConfirmedAt  time.Time
}

type CancelOrderParams struct {
	OrderID     primitive.ObjectID
	FromStatus  constants.OrderStatus
	Reason      constants.CancelReason
	CancelledAt time.Time
}

type MarkUsedParams struct {
	OrderID primitive.ObjectID
	Staff   *models.StaffRef
	UsedAt  time.Time
}

type ListOrdersByEventParams struct {
	EventID primitive.ObjectID
	Status  constants.OrderStatus
	Limit   int
	Offset  int
}

type ListOrdersByBuyerParams struct {
	Email           string
	Limit           int64
	CursorCreatedAt time.Time
	CursorID        primitive.ObjectID
}

type ListAuditLogParams struct {
	OperatorID primitive.ObjectID
	Action     string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}
