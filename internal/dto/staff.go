package dto

import "github.com/winnyineza/choir-tickets/internal/models"

// AddStaffRequest registers an event staff member for check-in duty.
type AddStaffRequest struct {
	Name       string              `json:"name" validate:"required,max=120"`
	NationalID string              `json:"national_id" validate:"required,max=32"`
	Phone      string              `json:"phone" validate:"omitempty,max=32"`
	Events     []string            `json:"events" validate:"omitempty,dive,len=24,hexadecimal"`
	Operator   *models.OperatorRef `json:"-"`
}

// AssignStaffRequest replaces a staff member's event assignments.
type AssignStaffRequest struct {
	StaffID  string              `json:"-"`
	Events   []string            `json:"events" validate:"required,dive,len=24,hexadecimal"`
	Operator *models.OperatorRef `json:"-"`
}

// SetStaffActiveRequest flips a staff member's door access on or off.
type SetStaffActiveRequest struct {
	StaffID  string              `json:"-"`
	Active   bool                `json:"active"`
	Operator *models.OperatorRef `json:"-"`
}
