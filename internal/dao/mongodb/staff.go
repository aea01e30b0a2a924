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

func NewStaffDAO(db *mongo.Database, logger *zap.Logger) *StaffDAO {
	return &StaffDAO{
		staffCollection: db.Collection(CollectionStaff),
		logger:          logger.Named("StaffDAO"),
	}
}

type StaffDAO struct {
	staffCollection *mongo.Collection
	logger          *zap.Logger
}

func (d *StaffDAO) Create(ctx context.Context, staff *models.EventStaff) (nid primitive.ObjectID, err error) {
	res, err := d.staffCollection.InsertOne(ctx, staff)
	if err != nil {
		d.logger.Error("Create: InsertOne failed", zap.Error(err), zap.String("name", staff.Name))
		return
	}
	nid = res.InsertedID.(primitive.ObjectID)
	return
}

func (d *StaffDAO) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EventStaff, error) {
	var res models.EventStaff
	err := d.staffCollection.FindOne(ctx, bson.M{fields.FieldObjectId: id}).Decode(&res)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			d.logger.Error("GetByID: FindOne failed", zap.Error(err), zap.Stringer("staffID", id))
		}
		return nil, err
	}
	return &res, nil
}

func (d *StaffDAO) GetByNationalID(ctx context.Context, nationalID string) (*models.EventStaff, error) {
	var res models.EventStaff
	err := d.staffCollection.FindOne(ctx, bson.M{fields.FieldStaffNationalID: nationalID}).Decode(&res)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			d.logger.Error("GetByNationalID: FindOne failed", zap.Error(err))
		}
		return nil, err
	}
	return &res, nil
}

func (d *StaffDAO) Update(ctx context.Context, id primitive.ObjectID, opts ...repository.UpdateOption) error {
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

	result, err := d.staffCollection.UpdateOne(ctx, bson.M{fields.FieldObjectId: id}, updateDoc)
	if err != nil {
		d.logger.Error("Update: UpdateOne failed", zap.Error(err), zap.Stringer("staffID", id))
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (d *StaffDAO) List(ctx context.Context) ([]*models.EventStaff, error) {
	opts := options.Find().SetSort(bson.D{{Key: fields.FieldName, Value: 1}})
	cursor, err := d.staffCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		d.logger.Error("List: Find failed", zap.Error(err))
		return nil, err
	}

	staff := make([]*models.EventStaff, 0)
	if err = cursor.All(ctx, &staff); err != nil {
		d.logger.Error("List: cursor.All failed", zap.Error(err))
		return nil, err
	}
	return staff, nil
}
