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
	"golang.org/x/crypto/bcrypt"

	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/models"
	"github.com/winnyineza/choir-tickets/pkg/jwt"
)

type authFixture struct {
	operatorRepo *mockOperatorsRepository
	auditLogRepo *mockAuditLogRepository
	jwtManager   *jwt.Manager
	logic        *AuthLogic
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		operatorRepo: newMockOperatorsRepository(),
		auditLogRepo: newMockAuditLogRepository(),
		jwtManager:   newTestJwtManager(t),
	}
	f.logic = &AuthLogic{
		operatorRepo:     f.operatorRepo,
		auditLogRepo:     f.auditLogRepo,
		jwtManager:       f.jwtManager,
		idleDuration:     30 * time.Minute,
		rememberDuration: 7 * 24 * time.Hour,
		logger:           zap.NewNop(),
	}
	return f
}

func testOperator(t *testing.T, password string) *models.Operator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Operator{
		ID:           primitive.NewObjectID(),
		Name:         "Carol",
		Email:        "carol@example.com",
		PasswordHash: string(hash),
		Role:         "admin",
		Active:       true,
	}
}

func TestAuthLogic_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "correct horse")
		f.operatorRepo.On("GetByEmail", mock.Anything, operator.Email).Return(operator, nil).Once()
		f.operatorRepo.On("Update", mock.Anything, operator.ID, mock.Anything).Return(nil).Once()

		resp, err := f.logic.Login(context.Background(), &dto.LoginRequest{Email: operator.Email, Password: "correct horse"})

		require.NoError(t, err)
		assert.Equal(t, operator.ID, resp.Operator.ID)
		assert.Equal(t, "admin", resp.Role)
		assert.False(t, resp.Remember)
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), resp.ExpiresAt, 5*time.Second)

		claims, err := f.jwtManager.ParseClaims(resp.Token)
		require.NoError(t, err)
		assert.Contains(t, claims.Audience, SessionAudience)
		assert.Equal(t, operator.ID.Hex(), claims.Payload["operator_id"])

		f.operatorRepo.AssertExpectations(t)
		f.auditLogRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Remembered session gets the long expiry", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "correct horse")
		f.operatorRepo.On("GetByEmail", mock.Anything, operator.Email).Return(operator, nil).Once()
		f.operatorRepo.On("Update", mock.Anything, operator.ID, mock.Anything).Return(nil).Once()

		resp, err := f.logic.Login(context.Background(), &dto.LoginRequest{Email: operator.Email, Password: "correct horse", Remember: true})

		require.NoError(t, err)
		assert.True(t, resp.Remember)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), resp.ExpiresAt, 5*time.Second)
	})

	t.Run("Wrong password leaves a failed login entry", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "correct horse")
		f.operatorRepo.On("GetByEmail", mock.Anything, operator.Email).Return(operator, nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "LOGIN_FAILED" && e.Operator.ID == operator.ID && e.Operator.Name == operator.Email
		})).Return(nil).Once()

		_, err := f.logic.Login(context.Background(), &dto.LoginRequest{Email: operator.Email, Password: "battery staple"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		f.auditLogRepo.AssertExpectations(t)
	})

	t.Run("Unknown email leaves a failed login entry", func(t *testing.T) {
		f := newAuthFixture(t)

		f.operatorRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, mongo.ErrNoDocuments).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "LOGIN_FAILED" && e.Operator.ID.IsZero() && e.Operator.Name == "nobody@example.com"
		})).Return(nil).Once()

		_, err := f.logic.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		f.auditLogRepo.AssertExpectations(t)
	})

	t.Run("Deactivated account is audited and refused", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "correct horse")
		operator.Active = false
		f.operatorRepo.On("GetByEmail", mock.Anything, operator.Email).Return(operator, nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "LOGIN_FAILED" && e.Operator.ID == operator.ID
		})).Return(nil).Once()

		_, err := f.logic.Login(context.Background(), &dto.LoginRequest{Email: operator.Email, Password: "correct horse"})

		assert.ErrorIs(t, err, ErrAccountDeactivated)
		f.auditLogRepo.AssertExpectations(t)
	})

	t.Run("Audit write failure does not change the rejection", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "correct horse")
		f.operatorRepo.On("GetByEmail", mock.Anything, operator.Email).Return(operator, nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError).Once()

		_, err := f.logic.Login(context.Background(), &dto.LoginRequest{Email: operator.Email, Password: "battery staple"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Last login bookkeeping failure does not block login", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "correct horse")
		f.operatorRepo.On("GetByEmail", mock.Anything, operator.Email).Return(operator, nil).Once()
		f.operatorRepo.On("Update", mock.Anything, operator.ID, mock.Anything).Return(assert.AnError).Once()

		resp, err := f.logic.Login(context.Background(), &dto.LoginRequest{Email: operator.Email, Password: "correct horse"})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})
}

func TestAuthLogic_ValidateSession(t *testing.T) {
	t.Run("Valid session", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "pw12345678")
		token, err := f.logic.mintSessionToken(operator, false, time.Now().Add(30*time.Minute))
		require.NoError(t, err)

		f.operatorRepo.On("GetByID", mock.Anything, operator.ID).Return(operator, nil).Once()

		session, err := f.logic.ValidateSession(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, operator.ID, session.Operator.ID)
		assert.Equal(t, "admin", session.Role)
		assert.False(t, session.Remember)

		f.operatorRepo.AssertExpectations(t)
	})

	t.Run("Expired token", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "pw12345678")
		token, err := f.logic.mintSessionToken(operator, false, time.Now().Add(-1*time.Minute))
		require.NoError(t, err)

		_, err = f.logic.ValidateSession(context.Background(), token)

		assert.ErrorIs(t, err, ErrSessionExpired)
		f.operatorRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Admission token is not a session", func(t *testing.T) {
		f := newAuthFixture(t)

		token, err := f.jwtManager.Generate(map[string]interface{}{"order_id": primitive.NewObjectID().Hex()},
			jwt.WithAudience(AdmissionAudience))
		require.NoError(t, err)

		_, err = f.logic.ValidateSession(context.Background(), token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Deactivation cuts off outstanding sessions with a trail entry", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "pw12345678")
		token, err := f.logic.mintSessionToken(operator, true, time.Now().Add(7*24*time.Hour))
		require.NoError(t, err)

		operator.Active = false
		f.operatorRepo.On("GetByID", mock.Anything, operator.ID).Return(operator, nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "SESSION_DENIED" && e.Operator.ID == operator.ID
		})).Return(nil).Once()

		_, err = f.logic.ValidateSession(context.Background(), token)

		assert.ErrorIs(t, err, ErrAccountDeactivated)
		f.auditLogRepo.AssertExpectations(t)
	})

	t.Run("Deleted operator", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "pw12345678")
		token, err := f.logic.mintSessionToken(operator, false, time.Now().Add(30*time.Minute))
		require.NoError(t, err)

		f.operatorRepo.On("GetByID", mock.Anything, operator.ID).Return(nil, mongo.ErrNoDocuments).Once()

		_, err = f.logic.ValidateSession(context.Background(), token)

		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}

func TestAuthLogic_RenewSession(t *testing.T) {
	t.Run("Rolling session gets a fresh window", func(t *testing.T) {
		f := newAuthFixture(t)

		operator := testOperator(t, "pw12345678")
		oldExpiry := time.Now().Add(5 * time.Minute)
		token, err := f.logic.mintSessionToken(operator, false, oldExpiry)
		require.NoError(t, err)

		f.operatorRepo.On("GetByID", mock.Anything, operator.ID).Return(operator, nil).Once()

		session := &dto.Session{Operator: operator.Ref(), Role: operator.Role, Remember: false, ExpiresAt: oldExpiry}
		renewed, expiresAt, err := f.logic.RenewSession(context.Background(), token, session)

		require.NoError(t, err)
		assert.NotEqual(t, token, renewed)
		assert.True(t, expiresAt.After(oldExpiry))

		claims, err := f.jwtManager.ParseClaims(renewed)
		require.NoError(t, err)
		assert.Equal(t, operator.ID.Hex(), claims.Payload["operator_id"])
	})

	t.Run("Remembered session is returned unchanged", func(t *testing.T) {
		f := newAuthFixture(t)

		expiry := time.Now().Add(3 * 24 * time.Hour)
		session := &dto.Session{Remember: true, ExpiresAt: expiry}

		renewed, expiresAt, err := f.logic.RenewSession(context.Background(), "original-token", session)

		require.NoError(t, err)
		assert.Equal(t, "original-token", renewed)
		assert.Equal(t, expiry, expiresAt)
		f.operatorRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}
