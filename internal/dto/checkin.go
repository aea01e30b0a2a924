package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckinRequest carries the scanned admission token.
type CheckinRequest struct {
	Token   string `json:"token" validate:"required"`
	StaffID string `json:"staff_id" validate:"required,len=24,hexadecimal"`
}

// CheckinResult reports the outcome of one scan.
type CheckinResult struct {
	Admitted    bool               `json:"admitted"`
	OrderID     primitive.ObjectID `json:"order_id"`
	Serial      uint64             `json:"serial"`
	BuyerName   string             `json:"buyer_name"`
	TicketCount uint32             `json:"ticket_count"`
	Status      string             `json:"status"`
	UsedAt      *time.Time         `json:"used_at,omitempty"`
}
