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
	"github.com/winnyineza/choir-tickets/internal/models"
)

// TierLogic manages ticket tiers and exposes the public availability view.
type TierLogic struct {
	tierRepo     repository.TiersRepository
	auditLogRepo repository.AuditLogRepository
	txManager    db.TransactionManager
	logger       *zap.Logger
}

func NewTierLogic(tierRepo repository.TiersRepository, auditLogRepo repository.AuditLogRepository, txManager db.TransactionManager, logger *zap.Logger) *TierLogic {
	return &TierLogic{
		tierRepo:     tierRepo,
		auditLogRepo: auditLogRepo,
		txManager:    txManager,
		logger:       logger.Named("TierLogic"),
	}
}

func (l *TierLogic) AddTier(ctx context.Context, d *dto.AddTierRequest) (primitive.ObjectID, error) {
	eventID, err := primitive.ObjectIDFromHex(d.Event)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid event id", ErrValidationFailed)
	}

	price, err := primitive.ParseDecimal128(d.Price)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid price format", ErrValidationFailed)
	}

	maxPerOrder := d.MaxPerOrder
	if maxPerOrder == 0 || maxPerOrder > d.Capacity {
		maxPerOrder = d.Capacity
	}

	now := time.Now()
	tier := &models.TicketTier{
		ID:          primitive.NewObjectID(),
		Event:       eventID,
		Name:        d.Name,
		Price:       price,
		Capacity:    d.Capacity,
		Sold:        0,
		MaxPerOrder: maxPerOrder,
		CreatedAt:   now,
		CreatedBy:   *d.Operator,
		UpdatedAt:   now,
	}

	res, err := l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		nid, err := l.tierRepo.Create(sessCtx, tier)
		if err != nil {
			return nil, fmt.Errorf("failed to create tier: %w", err)
		}

		if err := l.auditLogRepo.Create(sessCtx, buildAddTierAuditLog(d.Operator, tier)); err != nil {
			l.logger.Error("AddTier: failed to create audit log", zap.Error(err))
			return nil, err
		}

		return nid, nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	return res.(primitive.ObjectID), nil
}

func (l *TierLogic) UpdateTier(ctx context.Context, d *dto.UpdateTierRequest) error {
	tierID, err := primitive.ObjectIDFromHex(d.TierID)
	if err != nil {
		return fmt.Errorf("%w: invalid tier id", ErrValidationFailed)
	}

	price, err := primitive.ParseDecimal128(d.Price)
	if err != nil {
		return fmt.Errorf("%w: invalid price format", ErrValidationFailed)
	}

	before, err := l.tierRepo.GetByID(ctx, tierID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTierNotFound
		}
		return fmt.Errorf("failed to get tier: %w", err)
	}

	// Capacity may grow freely but never drop below what is already sold.
	if d.Capacity < before.Sold {
		return ErrCapacityBelowSold
	}

	maxPerOrder := d.MaxPerOrder
	if maxPerOrder == 0 || maxPerOrder > d.Capacity {
		maxPerOrder = d.Capacity
	}

	operRef := *d.Operator
	after := *before
	after.Name = d.Name
	after.Price = price
	after.Capacity = d.Capacity
	after.MaxPerOrder = maxPerOrder
	after.UpdatedAt = time.Now()
	after.UpdatedBy = &operRef

	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		if err := l.tierRepo.Update(sessCtx, &after); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrTierNotFound
			}
			return nil, fmt.Errorf("failed to update tier: %w", err)
		}

		if err := l.auditLogRepo.Create(sessCtx, buildUpdateTierAuditLog(d.Operator, before, &after)); err != nil {
			l.logger.Error("UpdateTier: failed to create audit log", zap.Error(err))
			return nil, err
		}

		return nil, nil
	})
	return err
}

// GetTierAvailability is the public listing. It exposes remaining seats and
// the per-order cap, never the raw sold counter.
func (l *TierLogic) GetTierAvailability(ctx context.Context, eventID primitive.ObjectID) ([]dto.TierAvailability, error) {
	tiers, err := l.tierRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}

	out := make([]dto.TierAvailability, 0, len(tiers))
	for _, t := range tiers {
		remaining := t.Remaining()
		out = append(out, dto.TierAvailability{
			ID:          t.ID.Hex(),
			Name:        t.Name,
			Price:       t.Price.String(),
			Remaining:   remaining,
			MaxPerOrder: t.MaxPerOrder,
			SoldOut:     remaining == 0,
		})
	}
	return out, nil
}

func (l *TierLogic) ListTiers(ctx context.Context, eventID primitive.ObjectID) ([]*models.TicketTier, error) {
	return l.tierRepo.ListByEvent(ctx, eventID)
}
