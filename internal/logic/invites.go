package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/winnyineza/choir-tickets/internal/conf"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/db"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/models"
)

// InviteLogic issues and consumes one-time operator invites.
type InviteLogic struct {
	inviteRepo   repository.InvitesRepository
	operatorRepo repository.OperatorsRepository
	auditLogRepo repository.AuditLogRepository
	txManager    db.TransactionManager
	expiry       time.Duration
	logger       *zap.Logger
}

func NewInviteLogic(inviteRepo repository.InvitesRepository, operatorRepo repository.OperatorsRepository, auditLogRepo repository.AuditLogRepository, txManager db.TransactionManager, cfg *conf.AppConfig, logger *zap.Logger) *InviteLogic {
	return &InviteLogic{
		inviteRepo:   inviteRepo,
		operatorRepo: operatorRepo,
		auditLogRepo: auditLogRepo,
		txManager:    txManager,
		expiry:       cfg.InviteExpiry(),
		logger:       logger.Named("InviteLogic"),
	}
}

// IssueInvite creates an invite with a fresh one-time code. Only a
// super_admin reaches this; the service layer enforces the role.
func (l *InviteLogic) IssueInvite(ctx context.Context, issuer *models.OperatorRef, d *dto.IssueInviteRequest) (*dto.IssueInviteResponse, error) {
	if _, err := l.operatorRepo.GetByEmail(ctx, d.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check operator email: %w", err)
	}

	var memberID *primitive.ObjectID
	if d.MemberID != "" {
		mid, err := primitive.ObjectIDFromHex(d.MemberID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid member id", ErrValidationFailed)
		}
		memberID = &mid
	}

	now := time.Now()
	invite := &models.Invite{
		ID:        primitive.NewObjectID(),
		Email:     d.Email,
		Name:      d.Name,
		Role:      d.Role,
		MemberID:  memberID,
		Code:      uuid.NewString(),
		IssuedBy:  *issuer,
		CreatedAt: now,
		ExpiresAt: now.Add(l.expiry),
	}

	_, err := l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		if _, err := l.inviteRepo.Create(sessCtx, invite); err != nil {
			return nil, fmt.Errorf("failed to create invite: %w", err)
		}
		if err := l.auditLogRepo.Create(sessCtx, buildIssueInviteAuditLog(issuer, invite)); err != nil {
			l.logger.Error("IssueInvite: failed to create audit log", zap.Error(err))
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("invite issued", zap.Stringer("inviteID", invite.ID), zap.String("role", invite.Role))
	return &dto.IssueInviteResponse{InviteID: invite.ID.Hex(), Code: invite.Code}, nil
}

// AcceptInvite consumes a code and provisions the operator account. The
// consume is a single compare-and-swap, so two racing acceptances of one
// code produce exactly one account.
func (l *InviteLogic) AcceptInvite(ctx context.Context, d *dto.AcceptInviteRequest) (*dto.AcceptInviteResponse, error) {
	// Peek first so the caller gets a precise rejection instead of a
	// generic not-found when the code is known but unusable.
	existing, err := l.inviteRepo.GetByCode(ctx, d.Code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	switch {
	case existing.Revoked:
		return nil, ErrInviteRevoked
	case existing.Used:
		return nil, ErrInviteAlreadyUsed
	case time.Now().After(existing.ExpiresAt):
		return nil, ErrInviteExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	res, err := l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		invite, err := l.inviteRepo.Consume(sessCtx, d.Code, now)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// The swap matches only unused, unrevoked, unexpired codes.
				// Look again to tell the caller which guard failed; the peek
				// above could be stale.
				latest, ferr := l.inviteRepo.GetByCode(sessCtx, d.Code)
				if ferr == nil && !latest.Used && now.After(latest.ExpiresAt) {
					return nil, ErrInviteExpired
				}
				return nil, ErrInviteAlreadyUsed
			}
			return nil, fmt.Errorf("failed to consume invite: %w", err)
		}

		operator := &models.Operator{
			ID:           primitive.NewObjectID(),
			Name:         invite.Name,
			Email:        invite.Email,
			PasswordHash: string(hash),
			Role:         invite.Role,
			Active:       true,
			MemberID:     invite.MemberID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := l.operatorRepo.Create(sessCtx, operator); err != nil {
			return nil, fmt.Errorf("failed to create operator: %w", err)
		}

		ref := operator.Ref()
		entry := NewAuditLog(&ref, "ACCEPT_INVITE", nil, map[string]interface{}{
			"invite_id": invite.ID,
			"role":      invite.Role,
		})
		if err := l.auditLogRepo.Create(sessCtx, entry); err != nil {
			l.logger.Error("AcceptInvite: failed to create audit log", zap.Error(err))
			return nil, err
		}

		return operator, nil
	})
	if err != nil {
		return nil, err
	}

	operator := res.(*models.Operator)
	ref := operator.Ref()
	l.logger.Info("invite accepted", zap.Stringer("operatorID", operator.ID), zap.String("role", operator.Role))
	return &dto.AcceptInviteResponse{Operator: &ref, Role: operator.Role}, nil
}

func (l *InviteLogic) RevokeInvite(ctx context.Context, actor *models.OperatorRef, inviteID primitive.ObjectID) error {
	invite, err := l.findInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.Used {
		return ErrInviteAlreadyUsed
	}

	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		if err := l.inviteRepo.Revoke(sessCtx, inviteID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrInviteAlreadyUsed
			}
			return nil, fmt.Errorf("failed to revoke invite: %w", err)
		}
		if err := l.auditLogRepo.Create(sessCtx, buildRevokeInviteAuditLog(actor, invite)); err != nil {
			l.logger.Error("RevokeInvite: failed to create audit log", zap.Error(err))
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (l *InviteLogic) ListInvites(ctx context.Context) ([]*models.Invite, error) {
	invites, err := l.inviteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	// Codes are secrets; the listing shows status, never the code itself.
	for _, inv := range invites {
		inv.Code = ""
	}
	return invites, nil
}

func (l *InviteLogic) findInvite(ctx context.Context, inviteID primitive.ObjectID) (*models.Invite, error) {
	invite, err := l.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}
