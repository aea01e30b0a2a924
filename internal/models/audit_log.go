package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLogEntry records one privileged action. The collection is append-only;
// entries are removed only by the retention sweep.
type AuditLogEntry struct {
	ID       primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Operator OperatorRef            `bson:"operator" json:"operator"`
	Action   string                 `bson:"action" json:"action"`
	Detail   string                 `bson:"detail" json:"detail"`
	Changes  map[string]interface{} `bson:"changes,omitempty" json:"changes,omitempty"`
	At       time.Time              `bson:"at" json:"at"`
}
