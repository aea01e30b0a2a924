package logic

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/models"
)

type inviteFixture struct {
	inviteRepo   *mockInvitesRepository
	operatorRepo *mockOperatorsRepository
	auditLogRepo *mockAuditLogRepository
	logic        *InviteLogic
}

func newInviteFixture() *inviteFixture {
	f := &inviteFixture{
		inviteRepo:   newMockInvitesRepository(),
		operatorRepo: newMockOperatorsRepository(),
		auditLogRepo: newMockAuditLogRepository(),
	}
	f.logic = &InviteLogic{
		inviteRepo:   f.inviteRepo,
		operatorRepo: f.operatorRepo,
		auditLogRepo: f.auditLogRepo,
		txManager:    &passthroughTxManager{},
		expiry:       7 * 24 * time.Hour,
		logger:       zap.NewNop(),
	}
	return f
}

func testIssuer() *models.OperatorRef {
	return &models.OperatorRef{ID: primitive.NewObjectID(), Name: "Root"}
}

func pendingInvite() *models.Invite {
	now := time.Now()
	return &models.Invite{
		ID:        primitive.NewObjectID(),
		Email:     "dana@example.com",
		Name:      "Dana",
		Role:      "admin",
		Code:      uuid.NewString(),
		IssuedBy:  *testIssuer(),
		CreatedAt: now.Add(-time.Hour),
		ExpiresAt: now.Add(6 * 24 * time.Hour),
	}
}

func TestInviteLogic_IssueInvite(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newInviteFixture()
		issuer := testIssuer()

		f.operatorRepo.On("GetByEmail", mock.Anything, "dana@example.com").Return(nil, mongo.ErrNoDocuments).Once()
		f.inviteRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv *models.Invite) bool {
			_, parseErr := uuid.Parse(inv.Code)
			return inv.Email == "dana@example.com" && inv.Role == "admin" &&
				inv.IssuedBy.ID == issuer.ID && parseErr == nil
		})).Return(primitive.NewObjectID(), nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "ISSUE_INVITE" && e.Operator.ID == issuer.ID
		})).Return(nil).Once()

		resp, err := f.logic.IssueInvite(context.Background(), issuer, &dto.IssueInviteRequest{
			Email: "dana@example.com",
			Name:  "Dana",
			Role:  "admin",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.InviteID)
		_, err = uuid.Parse(resp.Code)
		assert.NoError(t, err)

		f.inviteRepo.AssertExpectations(t)
		f.auditLogRepo.AssertExpectations(t)
	})

	t.Run("Email already has an account", func(t *testing.T) {
		f := newInviteFixture()

		f.operatorRepo.On("GetByEmail", mock.Anything, "dana@example.com").
			Return(&models.Operator{ID: primitive.NewObjectID(), Email: "dana@example.com"}, nil).Once()

		_, err := f.logic.IssueInvite(context.Background(), testIssuer(), &dto.IssueInviteRequest{
			Email: "dana@example.com",
			Name:  "Dana",
			Role:  "admin",
		})

		assert.ErrorIs(t, err, ErrEmailTaken)
		f.inviteRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Malformed member id", func(t *testing.T) {
		f := newInviteFixture()

		f.operatorRepo.On("GetByEmail", mock.Anything, "dana@example.com").Return(nil, mongo.ErrNoDocuments).Once()

		_, err := f.logic.IssueInvite(context.Background(), testIssuer(), &dto.IssueInviteRequest{
			Email:    "dana@example.com",
			Name:     "Dana",
			Role:     "admin",
			MemberID: "zz",
		})

		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestInviteLogic_AcceptInvite(t *testing.T) {
	t.Run("Success provisions the operator", func(t *testing.T) {
		f := newInviteFixture()
		invite := pendingInvite()

		f.inviteRepo.On("GetByCode", mock.Anything, invite.Code).Return(invite, nil).Once()
		f.inviteRepo.On("Consume", mock.Anything, invite.Code, mock.Anything).Return(invite, nil).Once()

		var created *models.Operator
		f.operatorRepo.On("Create", mock.Anything, mock.MatchedBy(func(op *models.Operator) bool {
			created = op
			return op.Email == invite.Email && op.Role == invite.Role && op.Active
		})).Return(primitive.NewObjectID(), nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "ACCEPT_INVITE"
		})).Return(nil).Once()

		resp, err := f.logic.AcceptInvite(context.Background(), &dto.AcceptInviteRequest{
			Code:     invite.Code,
			Password: "first-password",
		})

		require.NoError(t, err)
		assert.Equal(t, "Dana", resp.Operator.Name)
		assert.Equal(t, "admin", resp.Role)
		require.NotNil(t, created)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("first-password")))

		f.inviteRepo.AssertExpectations(t)
		f.operatorRepo.AssertExpectations(t)
	})

	t.Run("Unknown code", func(t *testing.T) {
		f := newInviteFixture()
		code := uuid.NewString()

		f.inviteRepo.On("GetByCode", mock.Anything, code).Return(nil, mongo.ErrNoDocuments).Once()

		_, err := f.logic.AcceptInvite(context.Background(), &dto.AcceptInviteRequest{Code: code, Password: "first-password"})

		assert.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("Revoked code", func(t *testing.T) {
		f := newInviteFixture()
		invite := pendingInvite()
		invite.Revoked = true

		f.inviteRepo.On("GetByCode", mock.Anything, invite.Code).Return(invite, nil).Once()

		_, err := f.logic.AcceptInvite(context.Background(), &dto.AcceptInviteRequest{Code: invite.Code, Password: "first-password"})

		assert.ErrorIs(t, err, ErrInviteRevoked)
	})

	t.Run("Used code", func(t *testing.T) {
		f := newInviteFixture()
		invite := pendingInvite()
		invite.Used = true

		f.inviteRepo.On("GetByCode", mock.Anything, invite.Code).Return(invite, nil).Once()

		_, err := f.logic.AcceptInvite(context.Background(), &dto.AcceptInviteRequest{Code: invite.Code, Password: "first-password"})

		assert.ErrorIs(t, err, ErrInviteAlreadyUsed)
	})

	t.Run("Expired code", func(t *testing.T) {
		f := newInviteFixture()
		invite := pendingInvite()
		invite.ExpiresAt = time.Now().Add(-time.Minute)

		f.inviteRepo.On("GetByCode", mock.Anything, invite.Code).Return(invite, nil).Once()

		_, err := f.logic.AcceptInvite(context.Background(), &dto.AcceptInviteRequest{Code: invite.Code, Password: "first-password"})

		assert.ErrorIs(t, err, ErrInviteExpired)
	})

	t.Run("Racing acceptance loses the swap", func(t *testing.T) {
		f := newInviteFixture()
		invite := pendingInvite()
		burned := *invite
		burned.Used = true

		f.inviteRepo.On("GetByCode", mock.Anything, invite.Code).Return(invite, nil).Once()
		f.inviteRepo.On("Consume", mock.Anything, invite.Code, mock.Anything).Return(nil, mongo.ErrNoDocuments).Once()
		f.inviteRepo.On("GetByCode", mock.Anything, invite.Code).Return(&burned, nil).Once()

		_, err := f.logic.AcceptInvite(context.Background(), &dto.AcceptInviteRequest{Code: invite.Code, Password: "first-password"})

		assert.ErrorIs(t, err, ErrInviteAlreadyUsed)
		f.operatorRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Expiry between peek and swap burns nothing", func(t *testing.T) {
		f := newInviteFixture()
		invite := pendingInvite()
		stale := *invite
		stale.ExpiresAt = time.Now().Add(time.Hour)
		expired := *invite
		expired.ExpiresAt = time.Now().Add(-time.Second)

		f.inviteRepo.On("GetByCode", mock.Anything, invite.Code).Return(&stale, nil).Once()
		f.inviteRepo.On("Consume", mock.Anything, invite.Code, mock.Anything).Return(nil, mongo.ErrNoDocuments).Once()
		f.inviteRepo.On("GetByCode", mock.Anything, invite.Code).Return(&expired, nil).Once()

		_, err := f.logic.AcceptInvite(context.Background(), &dto.AcceptInviteRequest{Code: invite.Code, Password: "first-password"})

		assert.ErrorIs(t, err, ErrInviteExpired)
		f.operatorRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestInviteLogic_RevokeInvite(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newInviteFixture()
		actor := testIssuer()
		invite := pendingInvite()

		f.inviteRepo.On("GetByID", mock.Anything, invite.ID).Return(invite, nil).Once()
		f.inviteRepo.On("Revoke", mock.Anything, invite.ID).Return(nil).Once()
		f.auditLogRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.AuditLogEntry) bool {
			return e.Action == "REVOKE_INVITE" && e.Operator.ID == actor.ID
		})).Return(nil).Once()

		err := f.logic.RevokeInvite(context.Background(), actor, invite.ID)

		require.NoError(t, err)
		f.inviteRepo.AssertExpectations(t)
	})

	t.Run("Already used", func(t *testing.T) {
		f := newInviteFixture()
		invite := pendingInvite()
		invite.Used = true

		f.inviteRepo.On("GetByID", mock.Anything, invite.ID).Return(invite, nil).Once()

		err := f.logic.RevokeInvite(context.Background(), testIssuer(), invite.ID)

		assert.ErrorIs(t, err, ErrInviteAlreadyUsed)
		f.inviteRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
	})

	t.Run("Used between fetch and swap", func(t *testing.T) {
		f := newInviteFixture()
		invite := pendingInvite()

		f.inviteRepo.On("GetByID", mock.Anything, invite.ID).Return(invite, nil).Once()
		f.inviteRepo.On("Revoke", mock.Anything, invite.ID).Return(mongo.ErrNoDocuments).Once()

		err := f.logic.RevokeInvite(context.Background(), testIssuer(), invite.ID)

		assert.ErrorIs(t, err, ErrInviteAlreadyUsed)
	})
}

func TestInviteLogic_ListInvites(t *testing.T) {
	t.Run("Codes are blanked", func(t *testing.T) {
		f := newInviteFixture()
		first := pendingInvite()
		second := pendingInvite()
		second.Used = true

		f.inviteRepo.On("List", mock.Anything).Return([]*models.Invite{first, second}, nil).Once()

		invites, err := f.logic.ListInvites(context.Background())

		require.NoError(t, err)
		require.Len(t, invites, 2)
		for _, inv := range invites {
			assert.Empty(t, inv.Code)
		}
	})
}
