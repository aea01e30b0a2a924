package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Operator is an authenticated admin-panel user.
type Operator struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	Role         string              `bson:"role" json:"role"`
	Active       bool                `bson:"active" json:"active"`
	MemberID     *primitive.ObjectID `bson:"member_id,omitempty" json:"member_id,omitempty"`
	LastLoginAt  *time.Time          `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// OperatorRef is the identity snapshot embedded in audit entries and
// created_by/updated_by fields.
type OperatorRef struct {
	ID    primitive.ObjectID `bson:"id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// Ref returns the embeddable identity snapshot for this operator.
func (o *Operator) Ref() OperatorRef {
	return OperatorRef{ID: o.ID, Name: o.Name, Email: o.Email}
}

// SystemOperator identifies actions performed by the system itself, such as
// the pending-order reclamation sweep.
var SystemOperator = OperatorRef{
	ID:    primitive.NilObjectID,
	Name:  "System",
	Email: "system@chorale.local",
}
