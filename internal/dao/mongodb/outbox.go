package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/conf"
	"github.com/winnyineza/choir-tickets/internal/models"
)

func NewOutboxDAO(client *mongo.Client, cfg *conf.MongodbConfig) *OutboxDAO {
	db := client.Database(cfg.DB)
	return &OutboxDAO{
		outboxCollection: db.Collection(CollectionOutbox),
	}
}

type OutboxDAO struct {
	outboxCollection *mongo.Collection
}

func (d *OutboxDAO) Create(ctx context.Context, message *models.OutboxMessage) error {
	_, err := d.outboxCollection.InsertOne(ctx, message)
	if err != nil {
		zap.L().Error("mongodb/outbox@Create: InsertOne", zap.Error(err))
		return err
	}
	return nil
}

// ClaimAndFetchEvents claims a batch of pending events in three phases so
// that concurrent workers never pick up the same message twice.
func (d *OutboxDAO) ClaimAndFetchEvents(ctx context.Context, limit int) ([]*models.OutboxMessage, error) {
	// Phase 1: find candidate IDs, oldest first.
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 1})

	filter := bson.M{"status": models.OutboxStatusPending}
	cursor, err := d.outboxCollection.Find(ctx, filter, findOptions)
	if err != nil {
		zap.L().Error("mongodb/outbox@ClaimAndFetchEvents: Phase 1 Find failed", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		zap.L().Error("mongodb/outbox@ClaimAndFetchEvents: Phase 1 cursor decoding failed", zap.Error(err))
		return nil, err
	}

	if len(results) == 0 {
		return []*models.OutboxMessage{}, nil
	}

	ids := make([]primitive.ObjectID, len(results))
	for i, res := range results {
		ids[i] = res.ID
	}

	// Phase 2: claim the candidates. The pending status in the filter acts
	// as an optimistic lock against other workers.
	claimID := primitive.NewObjectID()
	updateFilter := bson.M{
		"_id":    bson.M{"$in": ids},
		"status": models.OutboxStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.OutboxStatusProcessing,
			"claim_id":   claimID,
			"updated_at": time.Now(),
		},
	}
	updateResult, err := d.outboxCollection.UpdateMany(ctx, updateFilter, update)
	if err != nil {
		zap.L().Error("mongodb/outbox@ClaimAndFetchEvents: Phase 2 UpdateMany failed", zap.Error(err))
		return nil, err
	}

	// Another worker won the race between phases. Not an error.
	if updateResult.ModifiedCount == 0 {
		return []*models.OutboxMessage{}, nil
	}

	// Phase 3: fetch the documents this worker claimed.
	fetchFilter := bson.M{"claim_id": claimID}
	claimedCursor, err := d.outboxCollection.Find(ctx, fetchFilter)
	if err != nil {
		zap.L().Error("mongodb/outbox@ClaimAndFetchEvents: Phase 3 Find failed", zap.Error(err))
		return nil, err
	}

	var claimedMessages []*models.OutboxMessage
	if err = claimedCursor.All(ctx, &claimedMessages); err != nil {
		zap.L().Error("mongodb/outbox@ClaimAndFetchEvents: Phase 3 cursor decoding failed", zap.Error(err))
		return nil, err
	}

	return claimedMessages, nil
}

func (d *OutboxDAO) MarkAsProcessed(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":       models.OutboxStatusProcessed,
			"processed_at": time.Now(),
		},
	}
	_, err := d.outboxCollection.UpdateOne(ctx, filter, update)
	return err
}

func (d *OutboxDAO) IncrementRetry(ctx context.Context, id primitive.ObjectID, errorMessage string) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status": models.OutboxStatusPending,
			"error":  errorMessage,
		},
		"$inc": bson.M{"retries": 1},
	}
	_, err := d.outboxCollection.UpdateOne(ctx, filter, update)
	return err
}
