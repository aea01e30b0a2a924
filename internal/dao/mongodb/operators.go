package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/dao/fields"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/models"
)

func NewOperatorsDAO(db *mongo.Database, logger *zap.Logger) *OperatorsDAO {
	return &OperatorsDAO{
		operatorsCollection: db.Collection(CollectionOperators),
		logger:              logger.Named("OperatorsDAO"),
	}
}

type OperatorsDAO struct {
	operatorsCollection *mongo.Collection
	logger              *zap.Logger
}

func (d *OperatorsDAO) Create(ctx context.Context, op *models.Operator) (nid primitive.ObjectID, err error) {
	res, err := d.operatorsCollection.InsertOne(ctx, op)
	if err != nil {
		d.logger.Error("Create: InsertOne failed", zap.Error(err), zap.String("email", op.Email))
		return
	}
	nid = res.InsertedID.(primitive.ObjectID)
	return
}

func (d *OperatorsDAO) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Operator, error) {
	var res models.Operator
	err := d.operatorsCollection.FindOne(ctx, bson.M{fields.FieldObjectId: id}).Decode(&res)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			d.logger.Error("GetByID: FindOne failed", zap.Error(err), zap.Stringer("operatorID", id))
		}
		return nil, err
	}
	return &res, nil
}

func (d *OperatorsDAO) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	var res models.Operator
	err := d.operatorsCollection.FindOne(ctx, bson.M{fields.FieldOperatorEmail: email}).Decode(&res)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			d.logger.Error("GetByEmail: FindOne failed", zap.Error(err), zap.String("email", email))
		}
		return nil, err
	}
	return &res, nil
}

func (d *OperatorsDAO) Update(ctx context.Context, id primitive.ObjectID, opts ...repository.UpdateOption) error {
	updateOpts := repository.NewUpdateOptions()
	for _, opt := range opts {
		opt(updateOpts)
	}

	updateDoc := bson.M{}
	if len(updateOpts.SetFields) > 0 {
		updateDoc["$set"] = updateOpts.SetFields
	}
	if len(updateOpts.IncFields) > 0 {
		updateDoc["$inc"] = updateOpts.IncFields
	}

	if len(updateDoc) == 0 {
		return nil
	}

	result, err := d.operatorsCollection.UpdateOne(ctx, bson.M{fields.FieldObjectId: id}, updateDoc)
	if err != nil {
		d.logger.Error("Update: UpdateOne failed", zap.Error(err), zap.Stringer("operatorID", id))
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (d *OperatorsDAO) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := d.operatorsCollection.DeleteOne(ctx, bson.M{fields.FieldObjectId: id})
	if err != nil {
		d.logger.Error("Delete: DeleteOne failed", zap.Error(err), zap.Stringer("operatorID", id))
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (d *OperatorsDAO) List(ctx context.Context) ([]*models.Operator, error) {
	opts := options.Find().SetSort(bson.D{{Key: fields.FieldCreatedAt, Value: 1}})
	cursor, err := d.operatorsCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		d.logger.Error("List: Find failed", zap.Error(err))
		return nil, err
	}

	operators := make([]*models.Operator, 0)
	if err = cursor.All(ctx, &operators); err != nil {
		d.logger.Error("List: cursor.All failed", zap.Error(err))
		return nil, err
	}
	return operators, nil
}
