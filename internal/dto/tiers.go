package dto

import "github.com/winnyineza/choir-tickets/internal/models"

// AddTierRequest creates a ticket tier for an event.
type AddTierRequest struct {
	Event       string              `json:"event" validate:"required,len=24,hexadecimal"`
	Name        string              `json:"name" validate:"required,max=120"`
	Price       string              `json:"price" validate:"required"`
	Capacity    uint32              `json:"capacity" validate:"required,min=1"`
	MaxPerOrder uint32              `json:"max_per_order" validate:"omitempty,min=1"`
	Operator    *models.OperatorRef `json:"-"`
}

// UpdateTierRequest edits a tier. Capacity may only grow or stay above the
// sold count; price edits never touch existing orders.
type UpdateTierRequest struct {
	TierID      string              `json:"-"`
	Name        string              `json:"name" validate:"required,max=120"`
	Price       string              `json:"price" validate:"required"`
	Capacity    uint32              `json:"capacity" validate:"required,min=1"`
	MaxPerOrder uint32              `json:"max_per_order" validate:"omitempty,min=1"`
	Operator    *models.OperatorRef `json:"-"`
}

// TierAvailability is the public listing entry: no sold counts, just what a
// buyer needs to choose.
type TierAvailability struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Remaining   uint32 `json:"remaining"`
	MaxPerOrder uint32 `json:"max_per_order"`
	SoldOut     bool   `json:"sold_out"`
}
