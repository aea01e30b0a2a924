package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/constants"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/db"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/models"
)

// OperatorLogic manages operator accounts. Role changes and deactivations
// are super_admin territory; the service layer gates the route, this layer
// still refuses self-demotion and self-deactivation.
type OperatorLogic struct {
	operatorRepo repository.OperatorsRepository
	auditLogRepo repository.AuditLogRepository
	txManager    db.TransactionManager
	logger       *zap.Logger
}

func NewOperatorLogic(operatorRepo repository.OperatorsRepository, auditLogRepo repository.AuditLogRepository, txManager db.TransactionManager, logger *zap.Logger) *OperatorLogic {
	return &OperatorLogic{
		operatorRepo: operatorRepo,
		auditLogRepo: auditLogRepo,
		txManager:    txManager,
		logger:       logger.Named("OperatorLogic"),
	}
}

func (l *OperatorLogic) ListOperators(ctx context.Context) ([]*models.Operator, error) {
	return l.operatorRepo.List(ctx)
}

func (l *OperatorLogic) GetOperator(ctx context.Context, id primitive.ObjectID) (*models.Operator, error) {
	operator, err := l.operatorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProtectedOperator
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	return operator, nil
}

// ListAuditLog pages through the audit trail, newest first.
func (l *OperatorLogic) ListAuditLog(ctx context.Context, params *repository.ListAuditLogParams) ([]*models.AuditLogEntry, int64, error) {
	return l.auditLogRepo.List(ctx, params)
}

func (l *OperatorLogic) UpdateOperatorRole(ctx context.Context, d *dto.UpdateOperatorRoleRequest) error {
	targetID, err := primitive.ObjectIDFromHex(d.OperatorID)
	if err != nil {
		return fmt.Errorf("%w: invalid operator id", ErrValidationFailed)
	}

	// An operator cannot change their own role; a second super_admin has
	// to do it. This keeps the last super_admin from locking everyone out.
	if targetID == d.Actor.ID {
		return ErrProtectedOperator
	}

	if _, ok := constants.ParseRole(d.Role); !ok {
		return fmt.Errorf("%w: unknown role", ErrValidationFailed)
	}

	target, err := l.operatorRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrProtectedOperator
		}
		return fmt.Errorf("failed to get operator: %w", err)
	}

	// A super_admin account is never demoted by another operator's call.
	if target.Role == constants.RoleSuperAdmin.String() {
		return ErrProtectedOperator
	}

	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		err := l.operatorRepo.Update(sessCtx, targetID,
			repository.WithRole(d.Role),
			repository.WithUpdatedAt(time.Now()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update operator role: %w", err)
		}

		if err := l.auditLogRepo.Create(sessCtx, buildUpdateOperatorRoleAuditLog(d.Actor, target, d.Role)); err != nil {
			l.logger.Error("UpdateOperatorRole: failed to create audit log", zap.Error(err))
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("operator role updated",
		zap.Stringer("operatorID", targetID),
		zap.String("role", d.Role),
		zap.Stringer("actorID", d.Actor.ID),
	)
	return nil
}

func (l *OperatorLogic) SetOperatorActive(ctx context.Context, d *dto.SetOperatorActiveRequest) error {
	targetID, err := primitive.ObjectIDFromHex(d.OperatorID)
	if err != nil {
		return fmt.Errorf("%w: invalid operator id", ErrValidationFailed)
	}

	if targetID == d.Actor.ID {
		return ErrProtectedOperator
	}

	target, err := l.operatorRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrProtectedOperator
		}
		return fmt.Errorf("failed to get operator: %w", err)
	}

	// Deactivation never reaches a super_admin account, no matter who asks.
	if target.Role == constants.RoleSuperAdmin.String() {
		return ErrProtectedOperator
	}

	if target.Active == d.Active {
		return nil
	}

	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		err := l.operatorRepo.Update(sessCtx, targetID,
			repository.WithActive(d.Active),
			repository.WithUpdatedAt(time.Now()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update operator: %w", err)
		}

		if err := l.auditLogRepo.Create(sessCtx, buildSetOperatorActiveAuditLog(d.Actor, target, d.Active)); err != nil {
			l.logger.Error("SetOperatorActive: failed to create audit log", zap.Error(err))
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("operator active flag updated",
		zap.Stringer("operatorID", targetID),
		zap.Bool("active", d.Active),
		zap.Stringer("actorID", d.Actor.ID),
	)
	return nil
}

// DeleteOperator hard-deletes an account. Another super_admin's account and
// the acting operator's own account are both refused; deactivation is the
// path for locking out an account that may need to come back.
func (l *OperatorLogic) DeleteOperator(ctx context.Context, d *dto.DeleteOperatorRequest) error {
	targetID, err := primitive.ObjectIDFromHex(d.OperatorID)
	if err != nil {
		return fmt.Errorf("%w: invalid operator id", ErrValidationFailed)
	}

	if targetID == d.Actor.ID {
		return ErrProtectedOperator
	}

	target, err := l.operatorRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrProtectedOperator
		}
		return fmt.Errorf("failed to get operator: %w", err)
	}

	if target.Role == constants.RoleSuperAdmin.String() {
		return ErrProtectedOperator
	}

	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		if err := l.operatorRepo.Delete(sessCtx, targetID); err != nil {
			return nil, fmt.Errorf("failed to delete operator: %w", err)
		}

		if err := l.auditLogRepo.Create(sessCtx, buildDeleteOperatorAuditLog(d.Actor, target)); err != nil {
			l.logger.Error("DeleteOperator: failed to create audit log", zap.Error(err))
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("operator deleted",
		zap.Stringer("operatorID", targetID),
		zap.Stringer("actorID", d.Actor.ID),
	)
	return nil
}
