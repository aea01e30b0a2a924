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

type operatorFixture struct {
	operatorRepo *mockOperatorsRepository
	auditLogRepo *mockAuditLogRepository
	logic        *OperatorLogic
}

func newOperatorFixture() *operatorFixture {
	f := &operatorFixture{
		operatorRepo: newMockOperatorsRepository(),
		auditLogRepo: newMockAuditLogRepository(),
	}
	f.logic = &OperatorLogic{
		operatorRepo: f.operatorRepo,
		auditLogRepo: f.auditLogRepo,
		txManager:    &passthroughTxManager{},
		logger:       zap.NewNop(),
	}
	return f
}

func rootActor() *models.OperatorRef {
	return &models.OperatorRef{ID: primitive.NewObjectID(), Name: "Root"}
}

func adminOperator() *models.Operator {
	return &models.Operator{
		ID:     primitive.NewObjectID(),
		Name:   "Erin",
		Email:  "erin@example.com",
		Role:   "admin",
		Active: true,
	}
}

func superAdminOperator() *models.Operator {
	return &models.Operator{
		ID:     primitive.NewObjectID(),
		Name:   "Frank",
		Email:  "frank@example.com",
		Role:   "super_admin",
		Active: true,
	}
}

func TestOperatorLogic_UpdateOperatorRole(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newOperatorFixture()
		actor := rootActor()
		target := adminOperator()

		f.operatorRepo.On("GetByID", mock.Anything, target.ID).Return(target, nil).Once()
		f.operatorRepo.On("Update", mock.Anything, target.ID, mock.Anything).Return(nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "UPDATE_OPERATOR_ROLE" && e.Operator.ID == actor.ID
		})).Return(nil).Once()

		err := f.logic.UpdateOperatorRole(context.Background(), &dto.UpdateOperatorRoleRequest{
			OperatorID: target.ID.Hex(),
			Role:       "super_admin",
			Actor:      actor,
		})

		require.NoError(t, err)
		f.operatorRepo.AssertExpectations(t)
		f.auditLogRepo.AssertExpectations(t)
	})

	t.Run("Super admin target is protected", func(t *testing.T) {
		f := newOperatorFixture()
		target := superAdminOperator()

		f.operatorRepo.On("GetByID", mock.Anything, target.ID).Return(target, nil).Once()

		err := f.logic.UpdateOperatorRole(context.Background(), &dto.UpdateOperatorRoleRequest{
			OperatorID: target.ID.Hex(),
			Role:       "admin",
			Actor:      rootActor(),
		})

		assert.ErrorIs(t, err, ErrProtectedOperator)
		f.operatorRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Own role cannot be changed", func(t *testing.T) {
		f := newOperatorFixture()
		actor := rootActor()

		err := f.logic.UpdateOperatorRole(context.Background(), &dto.UpdateOperatorRoleRequest{
			OperatorID: actor.ID.Hex(),
			Role:       "admin",
			Actor:      actor,
		})

		assert.ErrorIs(t, err, ErrProtectedOperator)
		f.operatorRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Unknown role", func(t *testing.T) {
		f := newOperatorFixture()

		err := f.logic.UpdateOperatorRole(context.Background(), &dto.UpdateOperatorRoleRequest{
			OperatorID: primitive.NewObjectID().Hex(),
			Role:       "janitor",
			Actor:      rootActor(),
		})

		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("Unknown target", func(t *testing.T) {
		f := newOperatorFixture()
		targetID := primitive.NewObjectID()

		f.operatorRepo.On("GetByID", mock.Anything, targetID).Return(nil, mongo.ErrNoDocuments).Once()

		err := f.logic.UpdateOperatorRole(context.Background(), &dto.UpdateOperatorRoleRequest{
			OperatorID: targetID.Hex(),
			Role:       "admin",
			Actor:      rootActor(),
		})

		assert.ErrorIs(t, err, ErrProtectedOperator)
	})
}

func TestOperatorLogic_SetOperatorActive(t *testing.T) {
	t.Run("Deactivates an admin with a trail entry", func(t *testing.T) {
		f := newOperatorFixture()
		actor := rootActor()
		target := adminOperator()

		f.operatorRepo.On("GetByID", mock.Anything, target.ID).Return(target, nil).Once()
		f.operatorRepo.On("Update", mock.Anything, target.ID, mock.Anything).Return(nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "SET_OPERATOR_ACTIVE" && e.Operator.ID == actor.ID
		})).Return(nil).Once()

		err := f.logic.SetOperatorActive(context.Background(), &dto.SetOperatorActiveRequest{
			OperatorID: target.ID.Hex(),
			Active:     false,
			Actor:      actor,
		})

		require.NoError(t, err)
		f.operatorRepo.AssertExpectations(t)
		f.auditLogRepo.AssertExpectations(t)
	})

	t.Run("Super admin target is protected", func(t *testing.T) {
		f := newOperatorFixture()
		target := superAdminOperator()

		f.operatorRepo.On("GetByID", mock.Anything, target.ID).Return(target, nil).Once()

		err := f.logic.SetOperatorActive(context.Background(), &dto.SetOperatorActiveRequest{
			OperatorID: target.ID.Hex(),
			Active:     false,
			Actor:      rootActor(),
		})

		assert.ErrorIs(t, err, ErrProtectedOperator)
		f.operatorRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		f.auditLogRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Self deactivation is refused", func(t *testing.T) {
		f := newOperatorFixture()
		actor := rootActor()

		err := f.logic.SetOperatorActive(context.Background(), &dto.SetOperatorActiveRequest{
			OperatorID: actor.ID.Hex(),
			Active:     false,
			Actor:      actor,
		})

		assert.ErrorIs(t, err, ErrProtectedOperator)
	})

	t.Run("No change is a no-op", func(t *testing.T) {
		f := newOperatorFixture()
		target := adminOperator()

		f.operatorRepo.On("GetByID", mock.Anything, target.ID).Return(target, nil).Once()

		err := f.logic.SetOperatorActive(context.Background(), &dto.SetOperatorActiveRequest{
			OperatorID: target.ID.Hex(),
			Active:     true,
			Actor:      rootActor(),
		})

		require.NoError(t, err)
		f.operatorRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Malformed id", func(t *testing.T) {
		f := newOperatorFixture()

		err := f.logic.SetOperatorActive(context.Background(), &dto.SetOperatorActiveRequest{
			OperatorID: "zz",
			Active:     false,
			Actor:      rootActor(),
		})

		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestOperatorLogic_DeleteOperator(t *testing.T) {
	t.Run("Success with a trail entry", func(t *testing.T) {
		f := newOperatorFixture()
		actor := rootActor()
		target := adminOperator()

		f.operatorRepo.On("GetByID", mock.Anything, target.ID).Return(target, nil).Once()
		f.operatorRepo.On("Delete", mock.Anything, target.ID).Return(nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "DELETE_OPERATOR" && e.Operator.ID == actor.ID && e.Detail == target.Email
		})).Return(nil).Once()

		err := f.logic.DeleteOperator(context.Background(), &dto.DeleteOperatorRequest{
			OperatorID: target.ID.Hex(),
			Actor:      actor,
		})

		require.NoError(t, err)
		f.operatorRepo.AssertExpectations(t)
		f.auditLogRepo.AssertExpectations(t)
	})

	t.Run("Super admin target is protected", func(t *testing.T) {
		f := newOperatorFixture()
		target := superAdminOperator()

		f.operatorRepo.On("GetByID", mock.Anything, target.ID).Return(target, nil).Once()

		err := f.logic.DeleteOperator(context.Background(), &dto.DeleteOperatorRequest{
			OperatorID: target.ID.Hex(),
			Actor:      rootActor(),
		})

		assert.ErrorIs(t, err, ErrProtectedOperator)
		f.operatorRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Self deletion is refused", func(t *testing.T) {
		f := newOperatorFixture()
		actor := rootActor()

		err := f.logic.DeleteOperator(context.Background(), &dto.DeleteOperatorRequest{
			OperatorID: actor.ID.Hex(),
			Actor:      actor,
		})

		assert.ErrorIs(t, err, ErrProtectedOperator)
		f.operatorRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Unknown target", func(t *testing.T) {
		f := newOperatorFixture()
		targetID := primitive.NewObjectID()

		f.operatorRepo.On("GetByID", mock.Anything, targetID).Return(nil, mongo.ErrNoDocuments).Once()

		err := f.logic.DeleteOperator(context.Background(), &dto.DeleteOperatorRequest{
			OperatorID: targetID.Hex(),
			Actor:      rootActor(),
		})

		assert.ErrorIs(t, err, ErrProtectedOperator)
	})
}
