package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite is a one-time code that promotes a choir member to operator status.
// Acceptance consumes it atomically; expiry is absolute from creation.
type Invite struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email     string              `bson:"email" json:"email"`
	Name      string              `bson:"name" json:"name"`
	Role      string              `bson:"role" json:"role"`
	MemberID  *primitive.ObjectID `bson:"member_id,omitempty" json:"member_id,omitempty"`
	Code      string              `bson:"code" json:"code"`
	IssuedBy  OperatorRef         `bson:"issued_by" json:"issued_by"`
	Used      bool                `bson:"used" json:"used"`
	UsedAt    *time.Time          `bson:"used_at,omitempty" json:"used_at,omitempty"`
	Revoked   bool                `bson:"revoked" json:"revoked"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time           `bson:"expires_at" json:"expires_at"`
}
