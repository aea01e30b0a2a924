package logic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/constants"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/models"
	"github.com/winnyineza/choir-tickets/pkg/jwt"
)

type checkinFixture struct {
	orderRepo    *mockOrdersRepository
	staffRepo    *mockStaffRepository
	auditLogRepo *mockAuditLogRepository
	jwtManager   *jwt.Manager
	logic        *CheckinLogic
}

func newCheckinFixture(t *testing.T) *checkinFixture {
	t.Helper()
	f := &checkinFixture{
		orderRepo:    newMockOrdersRepository(),
		staffRepo:    newMockStaffRepository(),
		auditLogRepo: newMockAuditLogRepository(),
		jwtManager:   newTestJwtManager(t),
	}
	f.logic = &CheckinLogic{
		orderRepo:    f.orderRepo,
		staffRepo:    f.staffRepo,
		auditLogRepo: f.auditLogRepo,
		txManager:    &passthroughTxManager{},
		jwtManager:   f.jwtManager,
		logger:       zap.NewNop(),
	}
	return f
}

func (f *checkinFixture) admissionToken(t *testing.T, orderID primitive.ObjectID) string {
	t.Helper()
	token, err := f.jwtManager.Generate(map[string]interface{}{"order_id": orderID.Hex()},
		jwt.WithSubject(orderID.Hex()),
		jwt.WithAudience(AdmissionAudience),
	)
	require.NoError(t, err)
	return token
}

func confirmedOrder(eventID primitive.ObjectID) *models.Order {
	confirmedAt := time.Now().Add(-24 * time.Hour)
	return &models.Order{
		ID:     primitive.NewObjectID(),
		Event:  eventID,
		Serial: 1042,
		Buyer:  &models.Buyer{Name: "Alice", Email: "alice@example.com"},
		Items: []models.OrderLine{
			{Tier: primitive.NewObjectID(), Name: "Regular", Quantity: 2},
		},
		Status:      constants.OrderStatusConfirmed.String(),
		ConfirmedAt: &confirmedAt,
	}
}

func doorStaff(eventID primitive.ObjectID) *models.EventStaff {
	return &models.EventStaff{
		ID:     primitive.NewObjectID(),
		Name:   "Bob",
		Active: true,
		Events: []primitive.ObjectID{eventID},
	}
}

func TestCheckinLogic_Admit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newCheckinFixture(t)
		eventID := primitive.NewObjectID()
		order := confirmedOrder(eventID)
		staff := doorStaff(eventID)
		token := f.admissionToken(t, order.ID)

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.staffRepo.On("GetByID", mock.Anything, staff.ID).Return(staff, nil).Once()
		f.orderRepo.On("MarkUsed", mock.Anything, mock.MatchedBy(func(p *repository.MarkUsedParams) bool {
			return p.OrderID == order.ID && p.Staff != nil && p.Staff.ID == staff.ID
		})).Return(nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "CHECK_IN_ORDER" && e.Operator.ID == staff.ID
		})).Return(nil).Once()

		result, err := f.logic.Admit(context.Background(), &dto.CheckinRequest{Token: token, StaffID: staff.ID.Hex()})

		require.NoError(t, err)
		assert.True(t, result.Admitted)
		assert.Equal(t, order.ID, result.OrderID)
		assert.Equal(t, uint64(1042), result.Serial)
		assert.Equal(t, "Alice", result.BuyerName)
		assert.Equal(t, uint32(2), result.TicketCount)
		assert.Equal(t, constants.OrderStatusUsed.String(), result.Status)
		require.NotNil(t, result.UsedAt)

		f.orderRepo.AssertExpectations(t)
		f.auditLogRepo.AssertExpectations(t)
	})

	t.Run("Second scan reports the used state", func(t *testing.T) {
		f := newCheckinFixture(t)
		eventID := primitive.NewObjectID()
		order := confirmedOrder(eventID)
		usedAt := time.Now().Add(-5 * time.Minute)
		order.Status = constants.OrderStatusUsed.String()
		order.UsedAt = &usedAt
		staff := doorStaff(eventID)
		token := f.admissionToken(t, order.ID)

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.staffRepo.On("GetByID", mock.Anything, staff.ID).Return(staff, nil).Once()

		result, err := f.logic.Admit(context.Background(), &dto.CheckinRequest{Token: token, StaffID: staff.ID.Hex()})

		assert.ErrorIs(t, err, ErrTicketAlreadyUsed)
		require.NotNil(t, result)
		assert.False(t, result.Admitted)
		assert.Equal(t, &usedAt, result.UsedAt)
		f.orderRepo.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
	})

	t.Run("Concurrent scan loses the race", func(t *testing.T) {
		f := newCheckinFixture(t)
		eventID := primitive.NewObjectID()
		order := confirmedOrder(eventID)
		staff := doorStaff(eventID)
		token := f.admissionToken(t, order.ID)

		used := confirmedOrder(eventID)
		used.ID = order.ID
		usedAt := time.Now()
		used.Status = constants.OrderStatusUsed.String()
		used.UsedAt = &usedAt

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.staffRepo.On("GetByID", mock.Anything, staff.ID).Return(staff, nil).Once()
		f.orderRepo.On("MarkUsed", mock.Anything, mock.Anything).Return(mongo.ErrNoDocuments).Once()
		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(used, nil).Once()

		result, err := f.logic.Admit(context.Background(), &dto.CheckinRequest{Token: token, StaffID: staff.ID.Hex()})

		assert.ErrorIs(t, err, ErrTicketAlreadyUsed)
		require.NotNil(t, result)
		assert.False(t, result.Admitted)
	})

	t.Run("Pending order is not admissible", func(t *testing.T) {
		f := newCheckinFixture(t)
		eventID := primitive.NewObjectID()
		order := confirmedOrder(eventID)
		order.Status = constants.OrderStatusPending.String()
		staff := doorStaff(eventID)
		token := f.admissionToken(t, order.ID)

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.staffRepo.On("GetByID", mock.Anything, staff.ID).Return(staff, nil).Once()

		_, err := f.logic.Admit(context.Background(), &dto.CheckinRequest{Token: token, StaffID: staff.ID.Hex()})

		assert.ErrorIs(t, err, ErrOrderNotConfirmed)
	})

	t.Run("Garbage token", func(t *testing.T) {
		f := newCheckinFixture(t)

		_, err := f.logic.Admit(context.Background(), &dto.CheckinRequest{Token: "not-a-jwt", StaffID: primitive.NewObjectID().Hex()})

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Session token is rejected at the door", func(t *testing.T) {
		f := newCheckinFixture(t)
		orderID := primitive.NewObjectID()
		token, err := f.jwtManager.Generate(map[string]interface{}{"order_id": orderID.Hex()},
			jwt.WithAudience(SessionAudience),
			jwt.WithExpiresAt(time.Now().Add(time.Hour)),
		)
		require.NoError(t, err)

		_, err = f.logic.Admit(context.Background(), &dto.CheckinRequest{Token: token, StaffID: primitive.NewObjectID().Hex()})

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Token for a deleted order", func(t *testing.T) {
		f := newCheckinFixture(t)
		orderID := primitive.NewObjectID()
		token := f.admissionToken(t, orderID)

		f.orderRepo.On("GetByID", mock.Anything, orderID).Return(nil, mongo.ErrNoDocuments).Once()

		_, err := f.logic.Admit(context.Background(), &dto.CheckinRequest{Token: token, StaffID: primitive.NewObjectID().Hex()})

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Inactive staff", func(t *testing.T) {
		f := newCheckinFixture(t)
		eventID := primitive.NewObjectID()
		order := confirmedOrder(eventID)
		staff := doorStaff(eventID)
		staff.Active = false
		token := f.admissionToken(t, order.ID)

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.staffRepo.On("GetByID", mock.Anything, staff.ID).Return(staff, nil).Once()

		_, err := f.logic.Admit(context.Background(), &dto.CheckinRequest{Token: token, StaffID: staff.ID.Hex()})

		assert.ErrorIs(t, err, ErrStaffNotAuthorized)
	})

	t.Run("Staff assigned to a different event", func(t *testing.T) {
		f := newCheckinFixture(t)
		order := confirmedOrder(primitive.NewObjectID())
		staff := doorStaff(primitive.NewObjectID())
		token := f.admissionToken(t, order.ID)

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.staffRepo.On("GetByID", mock.Anything, staff.ID).Return(staff, nil).Once()

		_, err := f.logic.Admit(context.Background(), &dto.CheckinRequest{Token: token, StaffID: staff.ID.Hex()})

		assert.ErrorIs(t, err, ErrStaffNotAuthorized)
	})

	t.Run("Unknown staff id", func(t *testing.T) {
		f := newCheckinFixture(t)
		order := confirmedOrder(primitive.NewObjectID())
		staffID := primitive.NewObjectID()
		token := f.admissionToken(t, order.ID)

		f.orderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
		f.staffRepo.On("GetByID", mock.Anything, staffID).Return(nil, mongo.ErrNoDocuments).Once()

		_, err := f.logic.Admit(context.Background(), &dto.CheckinRequest{Token: token, StaffID: staffID.Hex()})

		assert.ErrorIs(t, err, ErrStaffNotAuthorized)
	})
}
