package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/dao/fields"
	"github.com/winnyineza/choir-tickets/internal/models"
)

func NewInvitesDAO(db *mongo.Database, logger *zap.Logger) *InvitesDAO {
	return &InvitesDAO{
		invitesCollection: db.Collection(CollectionInvites),
		logger:            logger.Named("InvitesDAO"),
	}
}

type InvitesDAO struct {
	invitesCollection *mongo.Collection
	logger            *zap.Logger
}

func (d *InvitesDAO) Create(ctx context.Context, invite *models.Invite) (nid primitive.ObjectID, err error) {
	res, err := d.invitesCollection.InsertOne(ctx, invite)
	if err != nil {
		d.logger.Error("Create: InsertOne failed", zap.Error(err), zap.String("email", invite.Email))
		return
	}
	nid = res.InsertedID.(primitive.ObjectID)
	return
}

func (d *InvitesDAO) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invite, error) {
	var res models.Invite
	err := d.invitesCollection.FindOne(ctx, bson.M{fields.FieldObjectId: id}).Decode(&res)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			d.logger.Error("GetByID: FindOne failed", zap.Error(err), zap.Stringer("inviteID", id))
		}
		return nil, err
	}
	return &res, nil
}

func (d *InvitesDAO) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	var res models.Invite
	err := d.invitesCollection.FindOne(ctx, bson.M{fields.FieldInviteCode: code}).Decode(&res)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			d.logger.Error("GetByCode: FindOne failed", zap.Error(err))
		}
		return nil, err
	}
	return &res, nil
}

// Consume flips used from false to true in a single FindOneAndUpdate. With
// two racing acceptances of the same code, only one caller gets the document
// back; the other sees ErrNoDocuments. Expired codes never match the filter,
// so an invite cannot be burned after its window closes.
func (d *InvitesDAO) Consume(ctx context.Context, code string, usedAt time.Time) (*models.Invite, error) {
	filter := bson.M{
		fields.FieldInviteCode:      code,
		fields.FieldInviteUsed:      false,
		fields.FieldInviteRevoked:   false,
		fields.FieldInviteExpiresAt: bson.M{"$gt": usedAt},
	}
	update := bson.M{"$set": bson.M{
		fields.FieldInviteUsed:   true,
		fields.FieldInviteUsedAt: usedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var invite models.Invite
	err := d.invitesCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&invite)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			d.logger.Error("Consume: FindOneAndUpdate failed", zap.Error(err))
		}
		return nil, err
	}
	return &invite, nil
}

func (d *InvitesDAO) Revoke(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{
		fields.FieldObjectId:   id,
		fields.FieldInviteUsed: false,
	}
	update := bson.M{"$set": bson.M{fields.FieldInviteRevoked: true}}

	result, err := d.invitesCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		d.logger.Error("Revoke: UpdateOne failed", zap.Error(err), zap.Stringer("inviteID", id))
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (d *InvitesDAO) List(ctx context.Context) ([]*models.Invite, error) {
	opts := options.Find().SetSort(bson.D{{Key: fields.FieldCreatedAt, Value: -1}})
	cursor, err := d.invitesCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		d.logger.Error("List: Find failed", zap.Error(err))
		return nil, err
	}

	invites := make([]*models.Invite, 0)
	if err = cursor.All(ctx, &invites); err != nil {
		d.logger.Error("List: cursor.All failed", zap.Error(err))
		return nil, err
	}
	return invites, nil
}
