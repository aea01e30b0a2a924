package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/db"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/helper"
	"github.com/winnyineza/choir-tickets/internal/models"
)

// StaffLogic manages the door staff roster and event assignments.
type StaffLogic struct {
	staffRepo    repository.StaffRepository
	auditLogRepo repository.AuditLogRepository
	txManager    db.TransactionManager
	logger       *zap.Logger
}

func NewStaffLogic(staffRepo repository.StaffRepository, auditLogRepo repository.AuditLogRepository, txManager db.TransactionManager, logger *zap.Logger) *StaffLogic {
	return &StaffLogic{
		staffRepo:    staffRepo,
		auditLogRepo: auditLogRepo,
		txManager:    txManager,
		logger:       logger.Named("StaffLogic"),
	}
}

func (l *StaffLogic) AddStaff(ctx context.Context, d *dto.AddStaffRequest) (primitive.ObjectID, error) {
	if existing, err := l.staffRepo.GetByNationalID(ctx, d.NationalID); err == nil && existing != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: staff member already registered", ErrValidationFailed)
	} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, fmt.Errorf("failed to check national id: %w", err)
	}

	var events []primitive.ObjectID
	if len(d.Events) > 0 {
		var err error
		events, err = helper.ConvertStringsToObjectID(d.Events)
		if err != nil {
			return primitive.NilObjectID, fmt.Errorf("%w: invalid event id", ErrValidationFailed)
		}
	}

	now := time.Now()
	staff := &models.EventStaff{
		ID:         primitive.NewObjectID(),
		Name:       d.Name,
		NationalID: d.NationalID,
		Phone:      d.Phone,
		Active:     true,
		Events:     events,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	res, err := l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		nid, err := l.staffRepo.Create(sessCtx, staff)
		if err != nil {
			return nil, fmt.Errorf("failed to create staff member: %w", err)
		}
		if err := l.auditLogRepo.Create(sessCtx, buildAddStaffAuditLog(d.Operator, staff)); err != nil {
			l.logger.Error("AddStaff: failed to create audit log", zap.Error(err))
			return nil, err
		}
		return nid, nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	return res.(primitive.ObjectID), nil
}

// AssignStaff replaces the member's assignment set. Check-in authorization
// follows this set immediately, so pulling an event revokes door access.
func (l *StaffLogic) AssignStaff(ctx context.Context, d *dto.AssignStaffRequest) error {
	staffID, err := primitive.ObjectIDFromHex(d.StaffID)
	if err != nil {
		return fmt.Errorf("%w: invalid staff id", ErrValidationFailed)
	}

	events, err := helper.ConvertStringsToObjectID(d.Events)
	if err != nil {
		return fmt.Errorf("%w: invalid event id", ErrValidationFailed)
	}

	staff, err := l.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrStaffNotAuthorized
		}
		return fmt.Errorf("failed to get staff member: %w", err)
	}

	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		err := l.staffRepo.Update(sessCtx, staffID,
			repository.WithStaffEvents(events),
			repository.WithUpdatedAt(time.Now()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update staff assignments: %w", err)
		}
		if err := l.auditLogRepo.Create(sessCtx, buildAssignStaffAuditLog(d.Operator, staff, events)); err != nil {
			l.logger.Error("AssignStaff: failed to create audit log", zap.Error(err))
			return nil, err
		}
		return nil, nil
	})
	return err
}

// SetStaffActive turns a staff member's door access on or off. Check-in
// authorization reads the flag live, so deactivation takes effect on the
// next scan.
func (l *StaffLogic) SetStaffActive(ctx context.Context, d *dto.SetStaffActiveRequest) error {
	staffID, err := primitive.ObjectIDFromHex(d.StaffID)
	if err != nil {
		return fmt.Errorf("%w: invalid staff id", ErrValidationFailed)
	}

	staff, err := l.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrStaffNotAuthorized
		}
		return fmt.Errorf("failed to get staff member: %w", err)
	}

	if staff.Active == d.Active {
		return nil
	}

	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		err := l.staffRepo.Update(sessCtx, staffID,
			repository.WithActive(d.Active),
			repository.WithUpdatedAt(time.Now()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update staff member: %w", err)
		}
		if err := l.auditLogRepo.Create(sessCtx, buildSetStaffActiveAuditLog(d.Operator, staff, d.Active)); err != nil {
			l.logger.Error("SetStaffActive: failed to create audit log", zap.Error(err))
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("staff active flag updated",
		zap.Stringer("staffID", staffID),
		zap.Bool("active", d.Active),
		zap.Stringer("actorID", d.Operator.ID),
	)
	return nil
}

func (l *StaffLogic) ListStaff(ctx context.Context) ([]*models.EventStaff, error) {
	return l.staffRepo.List(ctx)
}
