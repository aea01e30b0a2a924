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
	"github.com/winnyineza/choir-tickets/pkg/jwt"
)

// CheckinLogic validates admission tokens at the door and admits each order
// at most once.
type CheckinLogic struct {
	orderRepo    repository.OrdersRepository
	staffRepo    repository.StaffRepository
	auditLogRepo repository.AuditLogRepository
	txManager    db.TransactionManager
	jwtManager   *jwt.Manager
	logger       *zap.Logger
}

func NewCheckinLogic(orderRepo repository.OrdersRepository, staffRepo repository.StaffRepository, auditLogRepo repository.AuditLogRepository, txManager db.TransactionManager, jwtManager *jwt.Manager, logger *zap.Logger) *CheckinLogic {
	return &CheckinLogic{
		orderRepo:    orderRepo,
		staffRepo:    staffRepo,
		auditLogRepo: auditLogRepo,
		txManager:    txManager,
		jwtManager:   jwtManager,
		logger:       logger.Named("CheckinLogic"),
	}
}

// Admit processes one scan. On success the order flips confirmed->used and
// the result reports admitted=true; a second scan of the same token returns
// the used state with ErrTicketAlreadyUsed.
func (l *CheckinLogic) Admit(ctx context.Context, d *dto.CheckinRequest) (*dto.CheckinResult, error) {
	orderID, err := l.parseAdmissionToken(d.Token)
	if err != nil {
		return nil, err
	}

	staffID, err := primitive.ObjectIDFromHex(d.StaffID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid staff id", ErrValidationFailed)
	}

	order, err := l.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// The token verified but its order is gone. Treat as invalid
			// rather than leaking that the signature was fine.
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	staff, err := l.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrStaffNotAuthorized
		}
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	if !staff.Active || !staff.AssignedTo(order.Event) {
		return nil, ErrStaffNotAuthorized
	}

	switch constants.ParseOrderStatus(order.Status) {
	case constants.OrderStatusConfirmed:
		// Admissible, fall through to the atomic flip.
	case constants.OrderStatusUsed:
		return l.usedResult(order), ErrTicketAlreadyUsed
	default:
		return nil, ErrOrderNotConfirmed
	}

	now := time.Now()
	staffRef := staff.Ref()

	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		err := l.orderRepo.MarkUsed(sessCtx, &repository.MarkUsedParams{
			OrderID: order.ID,
			Staff:   &staffRef,
			UsedAt:  now,
		})
		if err != nil {
			return nil, err
		}

		// The trail records the admitting staff member as the actor.
		actor := &models.OperatorRef{ID: staff.ID, Name: staff.Name}
		entry := NewAuditLog(actor, "CHECK_IN_ORDER",
			map[string]interface{}{"status": order.Status},
			map[string]interface{}{"status": constants.OrderStatusUsed.String()},
			WithDetail(fmt.Sprintf("order serial %d", order.Serial)),
		)
		if err := l.auditLogRepo.Create(sessCtx, entry); err != nil {
			l.logger.Error("Admit: failed to create audit log", zap.Error(err))
			return nil, err
		}

		return nil, nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Lost the race to another scanner. Report the final state.
			l.logger.Info("Admit: concurrent scan detected", zap.Stringer("orderID", order.ID))
			latest, fetchErr := l.orderRepo.GetByID(ctx, order.ID)
			if fetchErr != nil {
				return nil, fmt.Errorf("failed to re-fetch order: %w", fetchErr)
			}
			if constants.ParseOrderStatus(latest.Status) == constants.OrderStatusUsed {
				return l.usedResult(latest), ErrTicketAlreadyUsed
			}
			return nil, ErrOrderNotConfirmed
		}
		return nil, fmt.Errorf("failed to mark order as used: %w", err)
	}

	l.logger.Info("order admitted",
		zap.Stringer("orderID", order.ID),
		zap.Stringer("staffID", staff.ID),
		zap.Uint32("tickets", order.TicketCount()),
	)

	usedAt := now
	return &dto.CheckinResult{
		Admitted:    true,
		OrderID:     order.ID,
		Serial:      order.Serial,
		BuyerName:   order.Buyer.Name,
		TicketCount: order.TicketCount(),
		Status:      constants.OrderStatusUsed.String(),
		UsedAt:      &usedAt,
	}, nil
}

// parseAdmissionToken verifies the token signature and audience and extracts
// the order id. Any defect reads as ErrInvalidToken; the door display never
// needs to know why.
func (l *CheckinLogic) parseAdmissionToken(token string) (primitive.ObjectID, error) {
	claims, err := l.jwtManager.ParseClaims(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenMalformed) ||
			errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenInvalid) ||
			errors.Is(err, jwt.ErrTokenNotValidYet) {
			return primitive.NilObjectID, ErrInvalidToken
		}
		return primitive.NilObjectID, err
	}

	audOK := false
	for _, aud := range claims.Audience {
		if aud == AdmissionAudience {
			audOK = true
			break
		}
	}
	if !audOK {
		return primitive.NilObjectID, ErrInvalidToken
	}

	rawID, ok := claims.Payload["order_id"].(string)
	if !ok {
		return primitive.NilObjectID, ErrInvalidToken
	}
	orderID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}

	return orderID, nil
}

func (l *CheckinLogic) usedResult(order *models.Order) *dto.CheckinResult {
	return &dto.CheckinResult{
		Admitted:    false,
		OrderID:     order.ID,
		Serial:      order.Serial,
		BuyerName:   order.Buyer.Name,
		TicketCount: order.TicketCount(),
		Status:      order.Status,
		UsedAt:      order.UsedAt,
	}
}
