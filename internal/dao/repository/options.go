package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/dao/fields"
	"github.com/winnyineza/choir-tickets/internal/models"
)

// UpdateOptions holds the fields for a MongoDB update operation.
// It is used with the Functional Options pattern.
type UpdateOptions struct {
	SetFields bson.M
	IncFields bson.M
}

// NewUpdateOptions creates a new instance of UpdateOptions.
func NewUpdateOptions() *UpdateOptions {
	return &UpdateOptions{
		SetFields: bson.M{},
		IncFields: bson.M{},
	}
}

// UpdateOption defines a function that can modify the UpdateOptions.
type UpdateOption func(*UpdateOptions)

// WithName is an option to update the name field.
func WithName(name string) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldName] = name
	}
}

// WithPhone is an option to update the phone field.
func WithPhone(phone string) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldPhone] = phone
	}
}

// WithActive is an option to update the active flag.
func WithActive(active bool) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldActive] = active
	}
}

// WithRole is an option to update an operator's role.
func WithRole(role string) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldOperatorRole] = role
	}
}

// WithLastLoginAt is an option to update an operator's last_login_at field.
func WithLastLoginAt(t time.Time) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldOperatorLastLoginAt] = t
	}
}

// WithStaffEvents is an option to replace a staff member's event assignments.
func WithStaffEvents(eventIDs []primitive.ObjectID) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldStaffEvents] = eventIDs
	}
}

// WithUpdatedBy is an option to update the updated_by field.
func WithUpdatedBy(op *models.OperatorRef) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldUpdatedBy] = op
	}
}

// WithUpdatedAt is an option to update the updated_at field.
func WithUpdatedAt(t time.Time) UpdateOption {
	return func(o *UpdateOptions) {
		o.SetFields[fields.FieldUpdatedAt] = t
	}
}
