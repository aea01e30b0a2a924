package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/models"
)

type TiersRepository interface {
	Create(ctx context.Context, t *models.TicketTier) (primitive.ObjectID, error)
	Update(ctx context.Context, t *models.TicketTier) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.TicketTier, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.TicketTier, error)
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*models.TicketTier, error)

	// Reserve atomically increments sold by quantity iff sold+quantity stays
	// within capacity; it returns ErrOutOfStock otherwise. Release is the
	// inverse and never drives sold below zero.
	Reserve(ctx context.Context, tierID primitive.ObjectID, quantity uint32) error
	Release(ctx context.Context, tierID primitive.ObjectID, quantity uint32) error
	SoldCount(ctx context.Context, tierID primitive.ObjectID) (uint32, error)
}

type OrdersRepository interface {
	Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)

	// The three transition writers below are compare-and-swap updates keyed on
	// the expected current status; a zero matched count means the order was
	// not in that status and the caller lost the race.
	Confirm(ctx context.Context, params *ConfirmOrderParams) error
	Cancel(ctx context.Context, params *CancelOrderParams) error
	MarkUsed(ctx context.Context, params *MarkUsedParams) error

	ListByEvent(ctx context.Context, params *ListOrdersByEventParams) ([]*models.Order, int64, error)
	ListByBuyerEmail(ctx context.Context, params *ListOrdersByBuyerParams) ([]*models.Order, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int64) ([]*models.Order, error)
	ListByEventAndMonth(ctx context.Context, eventID primitive.ObjectID, year int, month int) ([]*models.Order, error)
}

type OperatorsRepository interface {
	Create(ctx context.Context, op *models.Operator) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Operator, error)
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
	Update(ctx context.Context, id primitive.ObjectID, opts ...UpdateOption) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context) ([]*models.Operator, error)
}

type InvitesRepository interface {
	Create(ctx context.Context, invite *models.Invite) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invite, error)
	GetByCode(ctx context.Context, code string) (*models.Invite, error)
	// Consume flips used false->true in one compare-and-swap; exactly one
	// concurrent caller for a code observes success.
	Consume(ctx context.Context, code string, usedAt time.Time) (*models.Invite, error)
	Revoke(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context) ([]*models.Invite, error)
}

type StaffRepository interface {
	Create(ctx context.Context, staff *models.EventStaff) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.EventStaff, error)
	GetByNationalID(ctx context.Context, nationalID string) (*models.EventStaff, error)
	Update(ctx context.Context, id primitive.ObjectID, opts ...UpdateOption) error
	List(ctx context.Context) ([]*models.EventStaff, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	List(ctx context.Context, params *ListAuditLogParams) ([]*models.AuditLogEntry, int64, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, message *models.OutboxMessage) error
	ClaimAndFetchEvents(ctx context.Context, limit int) ([]*models.OutboxMessage, error)
	MarkAsProcessed(ctx context.Context, id primitive.ObjectID) error
	IncrementRetry(ctx context.Context, id primitive.ObjectID, errorMessage string) error
}
