package mongodb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tcMongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/models"
)

func buildInvite(ttl time.Duration) *models.Invite {
	now := time.Now().UTC()
	return &models.Invite{
		ID:        primitive.NewObjectID(),
		Email:     "dana@example.com",
		Name:      "Dana",
		Role:      "admin",
		Code:      uuid.NewString(),
		IssuedBy:  models.OperatorRef{ID: primitive.NewObjectID(), Name: "Root"},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestInvitesDAO_Consume(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	t.Run("marks a live code used exactly once", func(t *testing.T) {
		dao := setupInvitesDAOIntegration(t)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		invite := buildInvite(time.Hour)
		_, err := dao.Create(ctx, invite)
		require.NoError(t, err)

		usedAt := time.Now().UTC()
		consumed, err := dao.Consume(ctx, invite.Code, usedAt)
		require.NoError(t, err)
		require.True(t, consumed.Used)
		require.NotNil(t, consumed.UsedAt)

		_, err = dao.Consume(ctx, invite.Code, time.Now().UTC())
		require.ErrorIs(t, err, mongo.ErrNoDocuments)
	})

	t.Run("refuses an expired code without burning it", func(t *testing.T) {
		dao := setupInvitesDAOIntegration(t)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		invite := buildInvite(-time.Minute)
		_, err := dao.Create(ctx, invite)
		require.NoError(t, err)

		_, err = dao.Consume(ctx, invite.Code, time.Now().UTC())
		require.ErrorIs(t, err, mongo.ErrNoDocuments)

		// The expired invite must still read as unused.
		latest, err := dao.GetByCode(ctx, invite.Code)
		require.NoError(t, err)
		require.False(t, latest.Used)
		require.Nil(t, latest.UsedAt)
	})

	t.Run("refuses a revoked code", func(t *testing.T) {
		dao := setupInvitesDAOIntegration(t)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		invite := buildInvite(time.Hour)
		_, err := dao.Create(ctx, invite)
		require.NoError(t, err)

		require.NoError(t, dao.Revoke(ctx, invite.ID))

		_, err = dao.Consume(ctx, invite.Code, time.Now().UTC())
		require.ErrorIs(t, err, mongo.ErrNoDocuments)
	})

	t.Run("unknown code returns ErrNoDocuments", func(t *testing.T) {
		dao := setupInvitesDAOIntegration(t)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err := dao.Consume(ctx, uuid.NewString(), time.Now().UTC())
		require.ErrorIs(t, err, mongo.ErrNoDocuments)
	})
}

func TestInvitesDAO_Revoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	t.Run("used invite cannot be revoked", func(t *testing.T) {
		dao := setupInvitesDAOIntegration(t)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		invite := buildInvite(time.Hour)
		_, err := dao.Create(ctx, invite)
		require.NoError(t, err)

		_, err = dao.Consume(ctx, invite.Code, time.Now().UTC())
		require.NoError(t, err)

		err = dao.Revoke(ctx, invite.ID)
		require.ErrorIs(t, err, mongo.ErrNoDocuments)
	})
}

func setupInvitesDAOIntegration(t *testing.T) *InvitesDAO {
	t.Helper()

	configureDockerDesktop(t)

	baseCtx := context.Background()
	containerCtx, cancel := context.WithTimeout(baseCtx, 5*time.Minute)
	t.Cleanup(cancel)

	mongoContainer, err := tcMongo.Run(containerCtx, "mongo:7.0.14")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mongoContainer.Terminate(context.Background()))
	})

	connString, err := mongoContainer.ConnectionString(containerCtx)
	require.NoError(t, err)

	client, err := mongo.Connect(containerCtx, options.Client().ApplyURI(connString))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, client.Disconnect(context.Background()))
	})

	dbName := fmt.Sprintf("invitesdao_test_%d", time.Now().UnixNano())
	db := client.Database(dbName)
	t.Cleanup(func() {
		err := db.Drop(context.Background())
		var cmdErr mongo.CommandError
		if err != nil && (!errors.As(err, &cmdErr) || cmdErr.Code != 26) {
			require.NoError(t, err)
		}
	})

	return NewInvitesDAO(db, zap.NewNop())
}
