package logic

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/models"
)

// passthroughTxManager runs the transaction body directly, like the no-op
// manager used outside replica sets.
type passthroughTxManager struct{}

func (m *passthroughTxManager) WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (interface{}, error)) (interface{}, error) {
	return fn(ctx)
}

type mockTiersRepository struct {
	mock.Mock
}

func newMockTiersRepository() *mockTiersRepository {
	return &mockTiersRepository{}
}

func (m *mockTiersRepository) Create(ctx context.Context, t *models.TicketTier) (primitive.ObjectID, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockTiersRepository) Update(ctx context.Context, t *models.TicketTier) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTiersRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TicketTier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketTier), args.Error(1)
}

func (m *mockTiersRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.TicketTier, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TicketTier), args.Error(1)
}

func (m *mockTiersRepository) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*models.TicketTier, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TicketTier), args.Error(1)
}

func (m *mockTiersRepository) Reserve(ctx context.Context, tierID primitive.ObjectID, quantity uint32) error {
	args := m.Called(ctx, tierID, quantity)
	return args.Error(0)
}

func (m *mockTiersRepository) Release(ctx context.Context, tierID primitive.ObjectID, quantity uint32) error {
	args := m.Called(ctx, tierID, quantity)
	return args.Error(0)
}

func (m *mockTiersRepository) SoldCount(ctx context.Context, tierID primitive.ObjectID) (uint32, error) {
	args := m.Called(ctx, tierID)
	return args.Get(0).(uint32), args.Error(1)
}

type mockOrdersRepository struct {
	mock.Mock
}

func newMockOrdersRepository() *mockOrdersRepository {
	return &mockOrdersRepository{}
}

func (m *mockOrdersRepository) Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockOrdersRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrdersRepository) Confirm(ctx context.Context, params *repository.ConfirmOrderParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *mockOrdersRepository) Cancel(ctx context.Context, params *repository.CancelOrderParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *mockOrdersRepository) MarkUsed(ctx context.Context, params *repository.MarkUsedParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *mockOrdersRepository) ListByEvent(ctx context.Context, params *repository.ListOrdersByEventParams) ([]*models.Order, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrdersRepository) ListByBuyerEmail(ctx context.Context, params *repository.ListOrdersByBuyerParams) ([]*models.Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *mockOrdersRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int64) ([]*models.Order, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *mockOrdersRepository) ListByEventAndMonth(ctx context.Context, eventID primitive.ObjectID, year int, month int) ([]*models.Order, error) {
	args := m.Called(ctx, eventID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

type mockOperatorsRepository struct {
	mock.Mock
}

func newMockOperatorsRepository() *mockOperatorsRepository {
	return &mockOperatorsRepository{}
}

func (m *mockOperatorsRepository) Create(ctx context.Context, op *models.Operator) (primitive.ObjectID, error) {
	args := m.Called(ctx, op)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockOperatorsRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Operator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Operator), args.Error(1)
}

func (m *mockOperatorsRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Operator), args.Error(1)
}

func (m *mockOperatorsRepository) Update(ctx context.Context, id primitive.ObjectID, opts ...repository.UpdateOption) error {
	args := m.Called(ctx, id, opts)
	return args.Error(0)
}

func (m *mockOperatorsRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOperatorsRepository) List(ctx context.Context) ([]*models.Operator, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Operator), args.Error(1)
}

type mockInvitesRepository struct {
	mock.Mock
}

func newMockInvitesRepository() *mockInvitesRepository {
	return &mockInvitesRepository{}
}

func (m *mockInvitesRepository) Create(ctx context.Context, invite *models.Invite) (primitive.ObjectID, error) {
	args := m.Called(ctx, invite)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockInvitesRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invite, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *mockInvitesRepository) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *mockInvitesRepository) Consume(ctx context.Context, code string, usedAt time.Time) (*models.Invite, error) {
	args := m.Called(ctx, code, usedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *mockInvitesRepository) Revoke(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockInvitesRepository) List(ctx context.Context) ([]*models.Invite, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invite), args.Error(1)
}

type mockStaffRepository struct {
	mock.Mock
}

func newMockStaffRepository() *mockStaffRepository {
	return &mockStaffRepository{}
}

func (m *mockStaffRepository) Create(ctx context.Context, staff *models.EventStaff) (primitive.ObjectID, error) {
	args := m.Called(ctx, staff)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockStaffRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EventStaff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventStaff), args.Error(1)
}

func (m *mockStaffRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.EventStaff, error) {
	args := m.Called(ctx, nationalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventStaff), args.Error(1)
}

func (m *mockStaffRepository) Update(ctx context.Context, id primitive.ObjectID, opts ...repository.UpdateOption) error {
	args := m.Called(ctx, id, opts)
	return args.Error(0)
}

func (m *mockStaffRepository) List(ctx context.Context) ([]*models.EventStaff, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EventStaff), args.Error(1)
}

type mockAuditLogRepository struct {
	mock.Mock
}

func newMockAuditLogRepository() *mockAuditLogRepository {
	return &mockAuditLogRepository{}
}

func (m *mockAuditLogRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditLogRepository) List(ctx context.Context, params *repository.ListAuditLogParams) ([]*models.AuditLogEntry, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.AuditLogEntry), args.Get(1).(int64), args.Error(2)
}

func (m *mockAuditLogRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockOutboxRepository struct {
	mock.Mock
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{}
}

func (m *mockOutboxRepository) Create(ctx context.Context, message *models.OutboxMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockOutboxRepository) ClaimAndFetchEvents(ctx context.Context, limit int) ([]*models.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OutboxMessage), args.Error(1)
}

func (m *mockOutboxRepository) MarkAsProcessed(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepository) IncrementRetry(ctx context.Context, id primitive.ObjectID, errorMessage string) error {
	args := m.Called(ctx, id, errorMessage)
	return args.Error(0)
}
