package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/models"
)

// OrderLineRequest is one tier/quantity pair in a checkout request.
type OrderLineRequest struct {
	Tier     string `json:"tier" validate:"required,len=24,hexadecimal"`
	Quantity uint32 `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest is the public checkout payload.
type CreateOrderRequest struct {
	Event string             `json:"event" validate:"required,len=24,hexadecimal"`
	Buyer BuyerRequest       `json:"buyer" validate:"required"`
	Items []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type BuyerRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

// CreateOrderResponse echoes the server-computed totals so the buyer sees the
// authoritative price before paying.
type CreateOrderResponse struct {
	OrderID   primitive.ObjectID `json:"order_id"`
	Serial    uint64             `json:"serial"`
	Subtotal  string             `json:"subtotal"`
	Fees      string             `json:"fees"`
	Total     string             `json:"total"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// ConfirmOrderRequest records a completed payment against a pending order.
type ConfirmOrderRequest struct {
	OrderID    primitive.ObjectID
	PaymentRef string
	Operator   *models.OperatorRef
}

// CancelOrderRequest cancels a pending or confirmed order.
type CancelOrderRequest struct {
	OrderID  primitive.ObjectID
	Reason   string
	Operator *models.OperatorRef
}

// ConfirmOrderResponse carries the minted admission token.
type ConfirmOrderResponse struct {
	OrderID      primitive.ObjectID `json:"order_id"`
	CheckinToken string             `json:"checkin_token"`
}

// PaymentEvent is the broker payload consumed from the payment provider.
type PaymentEvent struct {
	OrderID    string `json:"order_id"`
	PaymentRef string `json:"payment_ref"`
	Status     string `json:"status"`
}
