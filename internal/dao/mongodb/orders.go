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

	"github.com/winnyineza/choir-tickets/internal/constants"
	"github.com/winnyineza/choir-tickets/internal/dao/fields"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/models"
)

func NewOrdersDAO(db *mongo.Database, logger *zap.Logger) *OrdersDAO {
	return &OrdersDAO{
		ordersCollection: db.Collection(CollectionOrders),
		logger:           logger.Named("OrdersDAO"),
	}
}

type OrdersDAO struct {
	ordersCollection *mongo.Collection
	logger           *zap.Logger
}

func (d *OrdersDAO) Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	res, err := d.ordersCollection.InsertOne(ctx, order)
	if err != nil {
		d.logger.Error("Create: InsertOne failed", zap.Error(err), zap.Any("order", order))
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (d *OrdersDAO) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var res models.Order
	err := d.ordersCollection.FindOne(ctx, bson.M{fields.FieldObjectId: id}).Decode(&res)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			d.logger.Error("GetByID: FindOne failed", zap.Error(err), zap.Stringer("orderID", id))
		}
		return nil, err
	}
	return &res, nil
}

// Confirm transitions an order from pending to confirmed. The status sits in
// the filter, so a concurrent cancel or a duplicate payment callback leaves
// MatchedCount at zero instead of overwriting the terminal state.
func (d *OrdersDAO) Confirm(ctx context.Context, params *repository.ConfirmOrderParams) error {
	filter := bson.M{
		fields.FieldObjectId: params.OrderID,
		fields.FieldStatus:   constants.OrderStatusPending.String(),
	}
	update := bson.M{"$set": bson.M{
		fields.FieldStatus:            constants.OrderStatusConfirmed.String(),
		fields.FieldOrderPaymentRef:   params.PaymentRef,
		fields.FieldOrderCheckinToken: params.CheckinToken,
		fields.FieldOrderConfirmedAt:  params.ConfirmedAt,
		fields.FieldUpdatedAt:         time.Now(),
	}}

	result, err := d.ordersCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		d.logger.Error("Confirm: UpdateOne failed", zap.Error(err), zap.Stringer("orderID", params.OrderID))
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

// Cancel transitions an order out of the status named in the params. The
// caller decides whether it is cancelling a pending or a confirmed order.
func (d *OrdersDAO) Cancel(ctx context.Context, params *repository.CancelOrderParams) error {
	filter := bson.M{
		fields.FieldObjectId: params.OrderID,
		fields.FieldStatus:   params.FromStatus.String(),
	}
	update := bson.M{"$set": bson.M{
		fields.FieldStatus:            constants.OrderStatusCancelled.String(),
		fields.FieldOrderCancelReason: params.Reason.String(),
		fields.FieldOrderCancelledAt:  params.CancelledAt,
		fields.FieldUpdatedAt:         time.Now(),
	}}

	result, err := d.ordersCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		d.logger.Error("Cancel: UpdateOne failed", zap.Error(err), zap.Stringer("orderID", params.OrderID))
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

// MarkUsed transitions an order from confirmed to used. Exactly one of any
// number of concurrent scans for the same order matches the filter.
func (d *OrdersDAO) MarkUsed(ctx context.Context, params *repository.MarkUsedParams) error {
	filter := bson.M{
		fields.FieldObjectId: params.OrderID,
		fields.FieldStatus:   constants.OrderStatusConfirmed.String(),
	}
	update := bson.M{"$set": bson.M{
		fields.FieldStatus:           constants.OrderStatusUsed.String(),
		fields.FieldOrderUsedAt:      params.UsedAt,
		fields.FieldOrderCheckedInBy: params.Staff,
		fields.FieldUpdatedAt:        time.Now(),
	}}

	result, err := d.ordersCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		d.logger.Error("MarkUsed: UpdateOne failed", zap.Error(err), zap.Stringer("orderID", params.OrderID))
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (d *OrdersDAO) ListByEvent(ctx context.Context, params *repository.ListOrdersByEventParams) ([]*models.Order, int64, error) {
	filter := bson.M{fields.FieldOrderEvent: params.EventID}
	if params.Status != constants.OrderStatusUnknown {
		filter[fields.FieldStatus] = params.Status.String()
	}
	return d.getPaginatedOrders(ctx, filter, params.Limit, params.Offset)
}

func (d *OrdersDAO) getPaginatedOrders(ctx context.Context, filter bson.M, limit, offset int) ([]*models.Order, int64, error) {
	total, err := d.ordersCollection.CountDocuments(ctx, filter)
	if err != nil {
		d.logger.Error("getPaginatedOrders: CountDocuments failed", zap.Error(err), zap.Any("filter", filter))
		return nil, 0, err
	}

	if total == 0 {
		return []*models.Order{}, 0, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: fields.FieldCreatedAt, Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := d.ordersCollection.Find(ctx, filter, opts)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []*models.Order{}, total, nil
		}
		d.logger.Error("getPaginatedOrders: Find failed", zap.Error(err), zap.Any("filter", filter))
		return nil, 0, err
	}

	var orders []*models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		d.logger.Error("getPaginatedOrders: cursor.All failed", zap.Error(err), zap.Any("filter", filter))
		return nil, 0, err
	}

	return orders, total, nil
}

func (d *OrdersDAO) ListByBuyerEmail(ctx context.Context, params *repository.ListOrdersByBuyerParams) ([]*models.Order, error) {
	filter := bson.M{fields.FieldOrderBuyerEmail: params.Email}

	// Cursor-based pagination keyed on (created_at, _id) so a page stays
	// stable while new orders arrive.
	if !params.CursorID.IsZero() && !params.CursorCreatedAt.IsZero() {
		filter["$or"] = []bson.M{
			{fields.FieldCreatedAt: bson.M{"$lt": params.CursorCreatedAt}},
			{fields.FieldCreatedAt: params.CursorCreatedAt, fields.FieldObjectId: bson.M{"$lt": params.CursorID}},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: fields.FieldCreatedAt, Value: -1}, {Key: fields.FieldObjectId, Value: -1}}).
		SetLimit(params.Limit)

	cursor, err := d.ordersCollection.Find(ctx, filter, opts)
	if err != nil {
		d.logger.Error("ListByBuyerEmail: Find failed", zap.Error(err), zap.String("email", params.Email))
		return nil, err
	}

	orders := make([]*models.Order, 0)
	if err = cursor.All(ctx, &orders); err != nil {
		d.logger.Error("ListByBuyerEmail: cursor.All failed", zap.Error(err), zap.String("email", params.Email))
		return nil, err
	}

	return orders, nil
}

// ListExpiredPending returns pending orders created before the cutoff, oldest
// first, for the reclamation sweep.
func (d *OrdersDAO) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int64) ([]*models.Order, error) {
	filter := bson.M{
		fields.FieldStatus:    constants.OrderStatusPending.String(),
		fields.FieldCreatedAt: bson.M{"$lt": cutoff},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: fields.FieldCreatedAt, Value: 1}}).
		SetLimit(limit)

	cursor, err := d.ordersCollection.Find(ctx, filter, opts)
	if err != nil {
		d.logger.Error("ListExpiredPending: Find failed", zap.Error(err), zap.Time("cutoff", cutoff))
		return nil, err
	}

	orders := make([]*models.Order, 0)
	if err = cursor.All(ctx, &orders); err != nil {
		d.logger.Error("ListExpiredPending: cursor.All failed", zap.Error(err), zap.Time("cutoff", cutoff))
		return nil, err
	}

	return orders, nil
}

func (d *OrdersDAO) ListByEventAndMonth(ctx context.Context, eventID primitive.ObjectID, year int, month int) ([]*models.Order, error) {
	startTime := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endTime := startTime.AddDate(0, 1, 0)

	filter := bson.M{
		fields.FieldOrderEvent: eventID,
		fields.FieldCreatedAt: bson.M{
			"$gte": startTime,
			"$lt":  endTime,
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: fields.FieldCreatedAt, Value: 1}})

	cursor, err := d.ordersCollection.Find(ctx, filter, opts)
	if err != nil {
		d.logger.Error("ListByEventAndMonth: Find failed", zap.Error(err), zap.Stringer("eventID", eventID))
		return nil, err
	}

	orders := make([]*models.Order, 0)
	if err = cursor.All(ctx, &orders); err != nil {
		d.logger.Error("ListByEventAndMonth: cursor.All failed", zap.Error(err), zap.Stringer("eventID", eventID))
		return nil, err
	}

	return orders, nil
}
