package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/winnyineza/choir-tickets/internal/conf"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/models"
	"github.com/winnyineza/choir-tickets/pkg/jwt"
)

// SessionAudience is the aud claim for operator session tokens.
const SessionAudience = "session"

// AuthLogic authenticates operators and manages their sessions. Sessions are
// stateless JWTs: a normal session carries a rolling idle expiry that renews
// on activity, a remembered session carries one fixed long expiry that never
// extends.
type AuthLogic struct {
	operatorRepo     repository.OperatorsRepository
	auditLogRepo     repository.AuditLogRepository
	jwtManager       *jwt.Manager
	idleDuration     time.Duration
	rememberDuration time.Duration
	logger           *zap.Logger
}

func NewAuthLogic(operatorRepo repository.OperatorsRepository, auditLogRepo repository.AuditLogRepository, jwtManager *jwt.Manager, cfg *conf.AppConfig, logger *zap.Logger) *AuthLogic {
	return &AuthLogic{
		operatorRepo:     operatorRepo,
		auditLogRepo:     auditLogRepo,
		jwtManager:       jwtManager,
		idleDuration:     cfg.SessionIdleDuration(),
		rememberDuration: cfg.SessionRememberDuration(),
		logger:           logger.Named("AuthLogic"),
	}
}

func (l *AuthLogic) Login(ctx context.Context, d *dto.LoginRequest) (*dto.LoginResponse, error) {
	operator, err := l.operatorRepo.GetByEmail(ctx, d.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Burn a comparison anyway so a missing account costs the same
			// as a wrong password.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(d.Password))
			l.auditFailedLogin(ctx, d.Email, primitive.NilObjectID, "unknown account")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(d.Password)); err != nil {
		l.auditFailedLogin(ctx, d.Email, operator.ID, "wrong password")
		return nil, ErrInvalidCredentials
	}

	if !operator.Active {
		l.auditFailedLogin(ctx, d.Email, operator.ID, "account deactivated")
		return nil, ErrAccountDeactivated
	}

	now := time.Now()
	expiresAt := now.Add(l.idleDuration)
	if d.Remember {
		expiresAt = now.Add(l.rememberDuration)
	}

	token, err := l.mintSessionToken(operator, d.Remember, expiresAt)
	if err != nil {
		l.logger.Error("Login: failed to mint session token", zap.Error(err), zap.Stringer("operatorID", operator.ID))
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	if err := l.operatorRepo.Update(ctx, operator.ID, repository.WithLastLoginAt(now)); err != nil {
		// Last-login is bookkeeping; a failed update must not block login.
		l.logger.Warn("Login: failed to record last login", zap.Error(err), zap.Stringer("operatorID", operator.ID))
	}

	ref := operator.Ref()
	l.logger.Info("operator logged in", zap.Stringer("operatorID", operator.ID), zap.Bool("remember", d.Remember))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Remember:  d.Remember,
		Operator:  &ref,
		Role:      operator.Role,
	}, nil
}

// auditFailedLogin records a rejected credential check. The entry is best
// effort; a trail write failure must not change the caller's answer.
func (l *AuthLogic) auditFailedLogin(ctx context.Context, email string, operatorID primitive.ObjectID, reason string) {
	entry := buildFailedLoginAuditLog(email, operatorID, reason)
	if err := l.auditLogRepo.Create(ctx, entry); err != nil {
		l.logger.Warn("failed to record failed login", zap.Error(err), zap.String("email", email))
	}
}

func (l *AuthLogic) auditDeniedSession(ctx context.Context, operator *models.OperatorRef, reason string) {
	entry := buildDeniedSessionAuditLog(operator, reason)
	if err := l.auditLogRepo.Create(ctx, entry); err != nil {
		l.logger.Warn("failed to record denied session", zap.Error(err), zap.Stringer("operatorID", operator.ID))
	}
}

func (l *AuthLogic) mintSessionToken(operator *models.Operator, remember bool, expiresAt time.Time) (string, error) {
	return l.jwtManager.Generate(map[string]interface{}{
		"operator_id": operator.ID.Hex(),
		"name":        operator.Name,
		"email":       operator.Email,
		"role":        operator.Role,
		"remember":    remember,
	},
		jwt.WithSubject(operator.ID.Hex()),
		jwt.WithAudience(SessionAudience),
		jwt.WithExpiresAt(expiresAt),
	)
}

// ValidateSession verifies a session token and returns the session it
// describes. Expired and malformed tokens both read as ErrSessionExpired to
// the client; the distinction only matters in logs.
func (l *AuthLogic) ValidateSession(ctx context.Context, token string) (*dto.Session, error) {
	claims, err := l.jwtManager.ParseClaims(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidToken
	}

	audOK := false
	for _, aud := range claims.Audience {
		if aud == SessionAudience {
			audOK = true
			break
		}
	}
	if !audOK {
		return nil, ErrInvalidToken
	}

	rawID, _ := claims.Payload["operator_id"].(string)
	operatorID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// The account state is checked live so a deactivation cuts off every
	// outstanding session, remembered ones included.
	operator, err := l.operatorRepo.GetByID(ctx, operatorID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	if !operator.Active {
		ref := operator.Ref()
		l.auditDeniedSession(ctx, &ref, "account deactivated")
		return nil, ErrAccountDeactivated
	}

	remember, _ := claims.Payload["remember"].(bool)

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &dto.Session{
		Operator:  operator.Ref(),
		Role:      operator.Role,
		Remember:  remember,
		ExpiresAt: expiresAt,
	}, nil
}

// RenewSession re-mints a rolling session token with a fresh idle window.
// Remembered sessions keep their original expiry and are returned unchanged.
func (l *AuthLogic) RenewSession(ctx context.Context, token string, session *dto.Session) (string, time.Time, error) {
	if session.Remember {
		return token, session.ExpiresAt, nil
	}

	operator, err := l.operatorRepo.GetByID(ctx, session.Operator.ID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get operator: %w", err)
	}

	expiresAt := time.Now().Add(l.idleDuration)
	renewed, err := l.mintSessionToken(operator, false, expiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to renew session token: %w", err)
	}
	return renewed, expiresAt, nil
}
