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

func NewTiersDAO(db *mongo.Database, logger *zap.Logger) *TiersDAO {
	return &TiersDAO{
		tiersCollection: db.Collection(CollectionTiers),
		logger:          logger.Named("TiersDAO"),
	}
}

type TiersDAO struct {
	tiersCollection *mongo.Collection
	logger          *zap.Logger
}

func (d *TiersDAO) Create(ctx context.Context, t *models.TicketTier) (nid primitive.ObjectID, err error) {
	res, err := d.tiersCollection.InsertOne(ctx, t)
	if err != nil {
		d.logger.Error("Create: InsertOne failed", zap.Error(err), zap.Any("tier", t))
		return
	}
	nid = res.InsertedID.(primitive.ObjectID)
	return
}

func (d *TiersDAO) Update(ctx context.Context, t *models.TicketTier) (err error) {
	update := bson.M{
		"$set": bson.M{
			fields.FieldName:            t.Name,
			fields.FieldTierPrice:       t.Price,
			fields.FieldTierCapacity:    t.Capacity,
			fields.FieldTierMaxPerOrder: t.MaxPerOrder,
			fields.FieldUpdatedAt:       t.UpdatedAt,
			fields.FieldUpdatedBy:       t.UpdatedBy,
		},
	}

	res, err := d.tiersCollection.UpdateOne(ctx, bson.M{fields.FieldObjectId: t.ID}, update)
	if err != nil {
		d.logger.Error("Update: UpdateOne failed", zap.Error(err), zap.Any("tier", t))
		return
	}
	if res.MatchedCount == 0 {
		err = mongo.ErrNoDocuments
	}
	return
}

func (d *TiersDAO) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TicketTier, error) {
	res := models.TicketTier{}
	err := d.tiersCollection.FindOne(ctx, bson.M{fields.FieldObjectId: id}).Decode(&res)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			d.logger.Error("GetByID: FindOne failed", zap.Error(err), zap.Stringer("tierID", id))
		}
		return nil, err
	}
	return &res, nil
}

func (d *TiersDAO) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.TicketTier, error) {
	if len(ids) == 0 {
		return []*models.TicketTier{}, nil
	}

	filter := bson.M{fields.FieldObjectId: bson.M{"$in": ids}}
	cursor, err := d.tiersCollection.Find(ctx, filter)
	if err != nil {
		d.logger.Error("GetByIDs: Find failed", zap.Error(err), zap.Any("ids", ids))
		return nil, err
	}

	tiers := make([]*models.TicketTier, 0, len(ids))
	if err = cursor.All(ctx, &tiers); err != nil {
		d.logger.Error("GetByIDs: cursor.All failed", zap.Error(err), zap.Any("ids", ids))
		return nil, err
	}
	return tiers, nil
}

func (d *TiersDAO) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*models.TicketTier, error) {
	opts := options.Find().SetSort(bson.D{{Key: fields.FieldTierPrice, Value: 1}, {Key: fields.FieldObjectId, Value: 1}})
	cursor, err := d.tiersCollection.Find(ctx, bson.M{fields.FieldTierEvent: eventID}, opts)
	if err != nil {
		d.logger.Error("ListByEvent: Find failed", zap.Error(err), zap.Stringer("eventID", eventID))
		return nil, err
	}

	tiers := make([]*models.TicketTier, 0)
	if err = cursor.All(ctx, &tiers); err != nil {
		d.logger.Error("ListByEvent: cursor.All failed", zap.Error(err), zap.Stringer("eventID", eventID))
		return nil, err
	}
	return tiers, nil
}

// Reserve increments sold by quantity only while sold+quantity stays within
// capacity. The capacity comparison runs inside the filter, so two concurrent
// reservations for the last seats can never both match.
func (d *TiersDAO) Reserve(ctx context.Context, tierID primitive.ObjectID, quantity uint32) error {
	filter := bson.M{
		fields.FieldObjectId: tierID,
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$" + fields.FieldTierSold, int64(quantity)}},
				"$" + fields.FieldTierCapacity,
			},
		},
	}
	update := bson.M{
		"$inc": bson.M{fields.FieldTierSold: int64(quantity)},
		"$set": bson.M{fields.FieldUpdatedAt: time.Now()},
	}

	res, err := d.tiersCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		d.logger.Error("Reserve: UpdateOne failed", zap.Error(err), zap.Stringer("tierID", tierID), zap.Uint32("quantity", quantity))
		return err
	}

	if res.MatchedCount == 0 {
		// Either the tier does not exist or the remaining capacity is short.
		// The filter cannot distinguish the two, so check existence once.
		count, cerr := d.tiersCollection.CountDocuments(ctx, bson.M{fields.FieldObjectId: tierID})
		if cerr != nil {
			d.logger.Error("Reserve: CountDocuments failed", zap.Error(cerr), zap.Stringer("tierID", tierID))
			return cerr
		}
		if count == 0 {
			return mongo.ErrNoDocuments
		}
		return ErrInsufficientStock
	}

	return nil
}

// Release returns quantity seats to the tier. The guard on sold keeps a
// duplicated release from driving the counter negative.
func (d *TiersDAO) Release(ctx context.Context, tierID primitive.ObjectID, quantity uint32) error {
	filter := bson.M{
		fields.FieldObjectId: tierID,
		fields.FieldTierSold: bson.M{"$gte": int64(quantity)},
	}
	update := bson.M{
		"$inc": bson.M{fields.FieldTierSold: -int64(quantity)},
		"$set": bson.M{fields.FieldUpdatedAt: time.Now()},
	}

	res, err := d.tiersCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		d.logger.Error("Release: UpdateOne failed", zap.Error(err), zap.Stringer("tierID", tierID), zap.Uint32("quantity", quantity))
		return err
	}

	if res.MatchedCount == 0 {
		d.logger.Warn("Release: no tier matched, counter left untouched",
			zap.Stringer("tierID", tierID),
			zap.Uint32("quantity", quantity))
		return mongo.ErrNoDocuments
	}

	return nil
}

func (d *TiersDAO) SoldCount(ctx context.Context, tierID primitive.ObjectID) (uint32, error) {
	tier, err := d.GetByID(ctx, tierID)
	if err != nil {
		return 0, err
	}
	return tier.Sold, nil
}
