package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/dao/fields"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/models"
)

func NewAuditLogDAO(db *mongo.Database, logger *zap.Logger) *AuditLogDAO {
	return &AuditLogDAO{
		collection: db.Collection(CollectionAuditLogs),
		logger:     logger.Named("AuditLogDAO"),
	}
}

type AuditLogDAO struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// Create inserts one audit entry. Callers run it inside the same transaction
// as the action being recorded, so a failed insert aborts the action too.
func (d *AuditLogDAO) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	_, err := d.collection.InsertOne(ctx, entry)
	if err != nil {
		d.logger.Error("Create: InsertOne failed", zap.Error(err), zap.String("action", entry.Action))
		return err
	}
	return nil
}

func (d *AuditLogDAO) List(ctx context.Context, params *repository.ListAuditLogParams) ([]*models.AuditLogEntry, int64, error) {
	filter := bson.M{}
	if !params.OperatorID.IsZero() {
		filter["operator.id"] = params.OperatorID
	}
	if params.Action != "" {
		filter["action"] = params.Action
	}
	timeRange := bson.M{}
	if !params.From.IsZero() {
		timeRange["$gte"] = params.From
	}
	if !params.To.IsZero() {
		timeRange["$lt"] = params.To
	}
	if len(timeRange) > 0 {
		filter[fields.FieldAuditAt] = timeRange
	}

	total, err := d.collection.CountDocuments(ctx, filter)
	if err != nil {
		d.logger.Error("List: CountDocuments failed", zap.Error(err), zap.Any("filter", filter))
		return nil, 0, err
	}

	if total == 0 {
		return []*models.AuditLogEntry{}, 0, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: fields.FieldAuditAt, Value: -1}}).
		SetSkip(int64(params.Offset)).
		SetLimit(int64(params.Limit))

	cursor, err := d.collection.Find(ctx, filter, opts)
	if err != nil {
		d.logger.Error("List: Find failed", zap.Error(err), zap.Any("filter", filter))
		return nil, 0, err
	}

	entries := make([]*models.AuditLogEntry, 0)
	if err = cursor.All(ctx, &entries); err != nil {
		d.logger.Error("List: cursor.All failed", zap.Error(err), zap.Any("filter", filter))
		return nil, 0, err
	}

	return entries, total, nil
}

// PurgeOlderThan deletes entries recorded before the cutoff. Run by the
// retention worker.
func (d *AuditLogDAO) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := d.collection.DeleteMany(ctx, bson.M{fields.FieldAuditAt: bson.M{"$lt": cutoff}})
	if err != nil {
		d.logger.Error("PurgeOlderThan: DeleteMany failed", zap.Error(err), zap.Time("cutoff", cutoff))
		return 0, err
	}
	return res.DeletedCount, nil
}
