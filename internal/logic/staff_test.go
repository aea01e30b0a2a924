package logic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/models"
)

type staffFixture struct {
	staffRepo    *mockStaffRepository
	auditLogRepo *mockAuditLogRepository
	logic        *StaffLogic
}

func newStaffFixture() *staffFixture {
	f := &staffFixture{
		staffRepo:    newMockStaffRepository(),
		auditLogRepo: newMockAuditLogRepository(),
	}
	f.logic = &StaffLogic{
		staffRepo:    f.staffRepo,
		auditLogRepo: f.auditLogRepo,
		txManager:    &passthroughTxManager{},
		logger:       zap.NewNop(),
	}
	return f
}

func rosteredStaff() *models.EventStaff {
	return &models.EventStaff{
		ID:         primitive.NewObjectID(),
		Name:       "Grace",
		NationalID: "1199012345678901",
		Phone:      "+250788123456",
		Active:     true,
		Events:     []primitive.ObjectID{primitive.NewObjectID()},
	}
}

func TestStaffLogic_SetStaffActive(t *testing.T) {
	t.Run("Deactivation flips the flag with a trail entry", func(t *testing.T) {
		f := newStaffFixture()
		operator := rootActor()
		staff := rosteredStaff()

		f.staffRepo.On("GetByID", mock.Anything, staff.ID).Return(staff, nil).Once()
		f.staffRepo.On("Update", mock.Anything, staff.ID, mock.Anything).Return(nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "SET_STAFF_ACTIVE" && e.Operator.ID == operator.ID && e.Detail == staff.Name
		})).Return(nil).Once()

		err := f.logic.SetStaffActive(context.Background(), &dto.SetStaffActiveRequest{
			StaffID:  staff.ID.Hex(),
			Active:   false,
			Operator: operator,
		})

		require.NoError(t, err)
		f.staffRepo.AssertExpectations(t)
		f.auditLogRepo.AssertExpectations(t)
	})

	t.Run("Reactivation", func(t *testing.T) {
		f := newStaffFixture()
		staff := rosteredStaff()
		staff.Active = false

		f.staffRepo.On("GetByID", mock.Anything, staff.ID).Return(staff, nil).Once()
		f.staffRepo.On("Update", mock.Anything, staff.ID, mock.Anything).Return(nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		err := f.logic.SetStaffActive(context.Background(), &dto.SetStaffActiveRequest{
			StaffID:  staff.ID.Hex(),
			Active:   true,
			Operator: rootActor(),
		})

		require.NoError(t, err)
		f.staffRepo.AssertExpectations(t)
	})

	t.Run("No change is a no-op", func(t *testing.T) {
		f := newStaffFixture()
		staff := rosteredStaff()

		f.staffRepo.On("GetByID", mock.Anything, staff.ID).Return(staff, nil).Once()

		err := f.logic.SetStaffActive(context.Background(), &dto.SetStaffActiveRequest{
			StaffID:  staff.ID.Hex(),
			Active:   true,
			Operator: rootActor(),
		})

		require.NoError(t, err)
		f.staffRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		f.auditLogRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Unknown staff member", func(t *testing.T) {
		f := newStaffFixture()
		staffID := primitive.NewObjectID()

		f.staffRepo.On("GetByID", mock.Anything, staffID).Return(nil, mongo.ErrNoDocuments).Once()

		err := f.logic.SetStaffActive(context.Background(), &dto.SetStaffActiveRequest{
			StaffID:  staffID.Hex(),
			Active:   false,
			Operator: rootActor(),
		})

		assert.ErrorIs(t, err, ErrStaffNotAuthorized)
	})

	t.Run("Malformed id", func(t *testing.T) {
		f := newStaffFixture()

		err := f.logic.SetStaffActive(context.Background(), &dto.SetStaffActiveRequest{
			StaffID:  "zz",
			Active:   false,
			Operator: rootActor(),
		})

		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}
