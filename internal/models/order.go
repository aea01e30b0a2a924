package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Buyer is the contact information captured at checkout. Buyers have no
// account; an order is the only record of them.
type Buyer struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

// OrderLine is one tier purchase within an order. UnitPrice is a snapshot of
// the tier price at purchase time; later tier edits never touch it.
type OrderLine struct {
	Tier      primitive.ObjectID   `bson:"tier" json:"tier"`
	Name      string               `bson:"name" json:"name"`
	Quantity  uint32               `bson:"quantity" json:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price" json:"unit_price"`
}

type Order struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Event        primitive.ObjectID   `bson:"event" json:"event"`
	Serial       uint64               `bson:"serial" json:"serial"`
	Buyer        *Buyer               `bson:"buyer" json:"buyer"`
	Items        []OrderLine          `bson:"items" json:"items"`
	Subtotal     primitive.Decimal128 `bson:"subtotal" json:"subtotal"`
	Fees         primitive.Decimal128 `bson:"fees" json:"fees"`
	Total        primitive.Decimal128 `bson:"total" json:"total"`
	PaymentRef   string               `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`
	CheckinToken string               `bson:"checkin_token,omitempty" json:"checkin_token,omitempty"`
	Status       string               `bson:"status" json:"status"`
	CancelReason string               `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
	ConfirmedAt  *time.Time           `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time           `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	UsedAt       *time.Time           `bson:"used_at,omitempty" json:"used_at,omitempty"`
	CheckedInBy  *StaffRef            `bson:"checked_in_by,omitempty" json:"checked_in_by,omitempty"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}

// TicketCount is the number of admissions this order grants.
func (o *Order) TicketCount() uint32 {
	var n uint32
	for _, line := range o.Items {
		n += line.Quantity
	}
	return n
}
