package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketTier is a priced ticket category for one event with its own finite
// capacity. Sold is mutated exclusively through the tier DAO's Reserve and
// Release operations so that sold <= capacity holds at all times.
type TicketTier struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Event       primitive.ObjectID   `bson:"event" json:"event"`
	Name        string               `bson:"name" json:"name"`
	Price       primitive.Decimal128 `bson:"price" json:"price"`
	Capacity    uint32               `bson:"capacity" json:"capacity"`
	Sold        uint32               `bson:"sold" json:"sold"`
	MaxPerOrder uint32               `bson:"max_per_order" json:"max_per_order"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	CreatedBy   OperatorRef          `bson:"created_by" json:"created_by"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
	UpdatedBy   *OperatorRef         `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// Remaining is the number of unreserved units.
func (t *TicketTier) Remaining() uint32 {
	if t.Sold >= t.Capacity {
		return 0
	}
	return t.Capacity - t.Sold
}
