package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventStaff is a door worker authorized to validate check-in tokens, scoped
// to the events in their assignment set.
type EventStaff struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"name" json:"name"`
	NationalID string               `bson:"national_id" json:"national_id"`
	Phone      string               `bson:"phone" json:"phone"`
	Active     bool                 `bson:"active" json:"active"`
	Events     []primitive.ObjectID `bson:"events" json:"events"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at" json:"updated_at"`
}

// AssignedTo reports whether eventID is in the staff member's assignment set.
func (s *EventStaff) AssignedTo(eventID primitive.ObjectID) bool {
	for _, e := range s.Events {
		if e == eventID {
			return true
		}
	}
	return false
}

// StaffRef is the identity snapshot stamped onto an order at check-in.
type StaffRef struct {
	ID   primitive.ObjectID `bson:"id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// Ref returns the embeddable identity snapshot for this staff member.
func (s *EventStaff) Ref() StaffRef {
	return StaffRef{ID: s.ID, Name: s.Name}
}
