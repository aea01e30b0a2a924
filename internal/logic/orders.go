package logic

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/winnyineza/choir-tickets/internal/conf"
	"github.com/winnyineza/choir-tickets/internal/constants"
	"github.com/winnyineza/choir-tickets/internal/dao/mongodb"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/db"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/helper"
	"github.com/winnyineza/choir-tickets/internal/models"
	"github.com/winnyineza/choir-tickets/pkg/jwt"
	"github.com/winnyineza/choir-tickets/pkg/pagination"
	"github.com/winnyineza/choir-tickets/pkg/snowflake"
)

// AdmissionAudience is the aud claim stamped into check-in tokens so session
// tokens can never pass for admission tokens.
const AdmissionAudience = "admission"

// expireSweepConcurrency bounds how many reclamation transactions run at
// once during a sweep.
const expireSweepConcurrency = 4

// OrderLogic defines the interface for order-related business logic.
type OrderLogic interface {
	CreateOrder(ctx context.Context, d *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	ConfirmOrder(ctx context.Context, d *dto.ConfirmOrderRequest) (*dto.ConfirmOrderResponse, error)
	CancelOrder(ctx context.Context, d *dto.CancelOrderRequest) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	GetOrdersByEvent(ctx context.Context, eid primitive.ObjectID, status constants.OrderStatus, pageReq *pagination.PageRequest) (*pagination.PageResult, error)
	GetOrdersByBuyer(ctx context.Context, email string, token pagination.PageToken) ([]*models.Order, pagination.PageToken, error)
	ExportEventOrdersByMonth(ctx context.Context, eventID primitive.ObjectID, year int, month int) (string, []byte, error)
	ExpireOverduePendingOrders(ctx context.Context, batchSize int64) (int64, error)
}

var _ OrderLogic = (*orderLogic)(nil)

var OrderLogicProviderSet = wire.NewSet(NewOrderLogic, wire.Bind(new(OrderLogic), new(*orderLogic)))

type orderLogic struct {
	orderRepo           repository.OrdersRepository
	tierRepo            repository.TiersRepository
	auditLogRepo        repository.AuditLogRepository
	emailEventPublisher *EmailEventPublisher
	txManager           db.TransactionManager
	jwtManager          *jwt.Manager
	idGenerator         *snowflake.Generator
	reservationDuration time.Duration
	feeRate             float64
	logger              *zap.Logger
}

func NewOrderLogic(
	orderRepo repository.OrdersRepository,
	tierRepo repository.TiersRepository,
	auditLogRepo repository.AuditLogRepository,
	emailEventPublisher *EmailEventPublisher,
	txManager db.TransactionManager,
	jwtManager *jwt.Manager,
	idGenerator *snowflake.Generator,
	cfg *conf.AppConfig,
	logger *zap.Logger,
) *orderLogic {
	feeRate := 0.0
	if cfg.CheckoutConfig != nil {
		feeRate = cfg.CheckoutConfig.FeeRate
	}
	return &orderLogic{
		orderRepo:           orderRepo,
		tierRepo:            tierRepo,
		auditLogRepo:        auditLogRepo,
		emailEventPublisher: emailEventPublisher,
		txManager:           txManager,
		jwtManager:          jwtManager,
		idGenerator:         idGenerator,
		reservationDuration: cfg.ReservationDuration(),
		feeRate:             feeRate,
		logger:              logger.Named("OrderLogic"),
	}
}

func (l *orderLogic) CreateOrder(ctx context.Context, d *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	now := time.Now()

	eventID, err := primitive.ObjectIDFromHex(d.Event)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event id", ErrValidationFailed)
	}

	builtItems, subtotal, err := l.validateAndBuildOrderLines(ctx, eventID, d.Items)
	if err != nil {
		return nil, err
	}

	fees, total, err := l.applyFees(subtotal)
	if err != nil {
		return nil, err
	}

	serialID, err := l.idGenerator.GetID()
	if err != nil {
		l.logger.Error("failed to generate snowflake id", zap.Error(err))
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	orderModel := &models.Order{
		ID:     primitive.NewObjectID(),
		Event:  eventID,
		Serial: serialID,
		Buyer: &models.Buyer{
			Name:  d.Buyer.Name,
			Email: d.Buyer.Email,
			Phone: d.Buyer.Phone,
		},
		Items:     builtItems,
		Subtotal:  subtotal,
		Fees:      fees,
		Total:     total,
		Status:    constants.OrderStatusPending.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Reserve every line and create the order in one transaction. A failed
	// reservation aborts the transaction, so earlier lines are rolled back
	// and no partial reservation survives.
	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		for _, line := range builtItems {
			if err := l.tierRepo.Reserve(sessCtx, line.Tier, line.Quantity); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return nil, ErrTierNotFound
				}
				if errors.Is(err, mongodb.ErrInsufficientStock) {
					return nil, ErrOutOfStock
				}
				return nil, fmt.Errorf("failed to reserve seats: %w", err)
			}
		}

		if _, err := l.orderRepo.Create(sessCtx, orderModel); err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}

		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.CreateOrderResponse{
		OrderID:   orderModel.ID,
		Serial:    orderModel.Serial,
		Subtotal:  subtotal.String(),
		Fees:      fees.String(),
		Total:     total.String(),
		ExpiresAt: now.Add(l.reservationDuration),
	}, nil
}

func (l *orderLogic) validateAndBuildOrderLines(ctx context.Context, eventID primitive.ObjectID, lines []dto.OrderLineRequest) ([]models.OrderLine, primitive.Decimal128, error) {
	var zero primitive.Decimal128

	ids := make([]primitive.ObjectID, 0, len(lines))
	requested := make(map[primitive.ObjectID]uint32, len(lines))
	for _, line := range lines {
		tierID, err := primitive.ObjectIDFromHex(line.Tier)
		if err != nil {
			return nil, zero, fmt.Errorf("%w: invalid tier id", ErrValidationFailed)
		}
		if _, seen := requested[tierID]; !seen {
			ids = append(ids, tierID)
		}
		// Split lines for the same tier count against one per-order limit.
		requested[tierID] += line.Quantity
	}

	tiers, err := l.tierRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, zero, fmt.Errorf("failed to load tiers: %w", err)
	}
	if len(tiers) != len(ids) {
		return nil, zero, ErrTierNotFound
	}

	tiersByID := make(map[primitive.ObjectID]*models.TicketTier, len(tiers))
	for _, t := range tiers {
		if t.Event != eventID {
			return nil, zero, fmt.Errorf("%w: tier belongs to a different event", ErrValidationFailed)
		}
		tiersByID[t.ID] = t
	}

	builtItems := make([]models.OrderLine, 0, len(ids))
	subtotal := zero
	for _, tierID := range ids {
		tier := tiersByID[tierID]
		quantity := requested[tierID]

		if tier.MaxPerOrder > 0 && quantity > tier.MaxPerOrder {
			return nil, zero, ErrExceedsPerOrderLimit
		}

		lineTotal, err := helper.MulDecimal128ByUint(tier.Price, quantity)
		if err != nil {
			return nil, zero, fmt.Errorf("failed to compute line total: %w", err)
		}
		subtotal, err = helper.AddDecimal128(subtotal, lineTotal)
		if err != nil {
			return nil, zero, fmt.Errorf("failed to sum subtotal: %w", err)
		}

		builtItems = append(builtItems, models.OrderLine{
			Tier:      tier.ID,
			Name:      tier.Name,
			Quantity:  quantity,
			UnitPrice: tier.Price,
		})
	}

	return builtItems, subtotal, nil
}

func (l *orderLogic) applyFees(subtotal primitive.Decimal128) (fees, total primitive.Decimal128, err error) {
	if l.feeRate <= 0 {
		return fees, subtotal, nil
	}

	sub, err := helper.Decimal128ToFloat64(subtotal)
	if err != nil {
		return fees, total, fmt.Errorf("failed to convert subtotal: %w", err)
	}

	fees, err = primitive.ParseDecimal128(strconv.FormatFloat(sub*l.feeRate, 'f', 2, 64))
	if err != nil {
		return fees, total, fmt.Errorf("failed to compute fees: %w", err)
	}

	total, err = helper.AddDecimal128(subtotal, fees)
	if err != nil {
		return fees, total, fmt.Errorf("failed to compute total: %w", err)
	}
	return fees, total, nil
}

// ConfirmOrder transitions a pending order to confirmed, mints the admission
// token and stages the confirmation email. The token is minted exactly once;
// re-sending the email later reuses the stored token.
func (l *orderLogic) ConfirmOrder(ctx context.Context, d *dto.ConfirmOrderRequest) (*dto.ConfirmOrderResponse, error) {
	order, err := l.orderRepo.GetByID(ctx, d.OrderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if status := constants.ParseOrderStatus(order.Status); status != constants.OrderStatusPending {
		return nil, l.confirmRejection(order)
	}

	now := time.Now()
	checkinToken, err := l.jwtManager.Generate(map[string]interface{}{
		"order_id":     order.ID.Hex(),
		"ticket_count": order.TicketCount(),
		"payment_ref":  d.PaymentRef,
	}, jwt.WithAudience(AdmissionAudience), jwt.WithSubject(order.ID.Hex()))
	if err != nil {
		l.logger.Error("ConfirmOrder: failed to mint admission token", zap.Error(err), zap.Stringer("orderID", order.ID))
		return nil, fmt.Errorf("failed to mint admission token: %w", err)
	}

	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		err := l.orderRepo.Confirm(sessCtx, &repository.ConfirmOrderParams{
			OrderID:      order.ID,
			PaymentRef:   d.PaymentRef,
			CheckinToken: checkinToken,
			ConfirmedAt:  now,
		})
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// Lost the race: the order left pending between our read
				// and the update. Re-fetch to report the right rejection.
				latest, fetchErr := l.orderRepo.GetByID(sessCtx, order.ID)
				if fetchErr != nil {
					return nil, fmt.Errorf("failed to re-fetch order: %w", fetchErr)
				}
				return nil, l.confirmRejection(latest)
			}
			return nil, fmt.Errorf("failed to confirm order: %w", err)
		}

		if err := l.auditLogRepo.Create(sessCtx, buildConfirmOrderAuditLog(d.Operator, order, d.PaymentRef)); err != nil {
			l.logger.Error("ConfirmOrder: failed to create audit log", zap.Error(err))
			return nil, err
		}

		if err := l.emailEventPublisher.PublishOrderConfirmation(sessCtx, order, checkinToken); err != nil {
			l.logger.Error("ConfirmOrder: failed to stage confirmation email", zap.Error(err), zap.Stringer("orderID", order.ID))
			return nil, err
		}

		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("order confirmed", zap.Stringer("orderID", order.ID), zap.String("paymentRef", d.PaymentRef))
	return &dto.ConfirmOrderResponse{OrderID: order.ID, CheckinToken: checkinToken}, nil
}

// confirmRejection maps a non-pending order to the error a confirming caller
// should see. A reservation reclaimed by the sweep reads as expired, anything
// else as an invalid transition.
func (l *orderLogic) confirmRejection(order *models.Order) error {
	status := constants.ParseOrderStatus(order.Status)
	if status == constants.OrderStatusCancelled &&
		constants.ParseCancelReason(order.CancelReason) == constants.CancelReasonReservationExpired {
		return ErrOrderExpired
	}
	return ErrInvalidTransition
}

func (l *orderLogic) CancelOrder(ctx context.Context, d *dto.CancelOrderRequest) error {
	order, err := l.orderRepo.GetByID(ctx, d.OrderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}

	fromStatus := constants.ParseOrderStatus(order.Status)
	if fromStatus.Terminal() {
		return ErrInvalidTransition
	}

	reason := constants.CancelReasonBuyerRequest
	if fromStatus == constants.OrderStatusConfirmed {
		reason = constants.CancelReasonRefunded
	}

	_, err = l.txManager.WithTransaction(ctx, func(sessCtx context.Context) (interface{}, error) {
		return nil, l.cancelAndRelease(sessCtx, order, fromStatus, reason, d.Operator, d.Reason)
	})
	return err
}

// cancelAndRelease performs the status CAS and returns the reserved seats.
// It expects to run inside a transaction.
func (l *orderLogic) cancelAndRelease(ctx context.Context, order *models.Order, fromStatus constants.OrderStatus, reason constants.CancelReason, operator *models.OperatorRef, detail string) error {
	err := l.orderRepo.Cancel(ctx, &repository.CancelOrderParams{
		OrderID:     order.ID,
		FromStatus:  fromStatus,
		Reason:      reason,
		CancelledAt: time.Now(),
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidTransition
		}
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	// Seats go back only after the CAS succeeded, so a lost race never
	// double-releases.
	for _, line := range order.Items {
		if err := l.tierRepo.Release(ctx, line.Tier, line.Quantity); err != nil {
			l.logger.Error("cancelAndRelease: failed to release seats",
				zap.Stringer("orderID", order.ID),
				zap.Stringer("tierID", line.Tier),
				zap.Error(err),
			)
			return fmt.Errorf("failed to release seats: %w", err)
		}
	}

	if operator != nil {
		if err := l.auditLogRepo.Create(ctx, buildCancelOrderAuditLog(operator, order, detail)); err != nil {
			l.logger.Error("cancelAndRelease: failed to create audit log", zap.Error(err))
			return err
		}
	}

	return nil
}

func (l *orderLogic) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := l.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (l *orderLogic) GetOrdersByEvent(ctx context.Context, eid primitive.ObjectID, status constants.OrderStatus, pageReq *pagination.PageRequest) (*pagination.PageResult, error) {
	orders, total, err := l.orderRepo.ListByEvent(ctx, &repository.ListOrdersByEventParams{
		EventID: eid,
		Status:  status,
		Limit:   pageReq.GetLimit(),
		Offset:  pageReq.GetOffset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders by event: %w", err)
	}

	return pagination.NewPageResult(orders, total, pageReq), nil
}

func (l *orderLogic) GetOrdersByBuyer(ctx context.Context, email string, token pagination.PageToken) ([]*models.Order, pagination.PageToken, error) {
	page, err := token.Decode()
	if err != nil {
		return nil, "", fmt.Errorf("%w: bad page token", ErrValidationFailed)
	}

	params := &repository.ListOrdersByBuyerParams{
		Email: email,
		Limit: pagination.DefaultPageSize,
	}
	if page != nil {
		cursorID, err := primitive.ObjectIDFromHex(page.CursorID)
		if err != nil {
			return nil, "", fmt.Errorf("%w: bad page token", ErrValidationFailed)
		}
		params.CursorID = cursorID
		params.CursorCreatedAt = time.Unix(page.CursorTimestamp, 0)
	}

	orders, err := l.orderRepo.ListByBuyerEmail(ctx, params)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list orders by buyer: %w", err)
	}

	var nextToken pagination.PageToken
	if len(orders) == int(params.Limit) {
		last := orders[len(orders)-1]
		nextToken, err = pagination.GenerateToken(last.ID, last.CreatedAt)
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate page token: %w", err)
		}
	}

	return orders, nextToken, nil
}

// ExportEventOrdersByMonth renders one month of orders as CSV for the
// treasurer's reconciliation.
func (l *orderLogic) ExportEventOrdersByMonth(ctx context.Context, eventID primitive.ObjectID, year int, month int) (string, []byte, error) {
	orders, err := l.orderRepo.ListByEventAndMonth(ctx, eventID, year, month)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list orders for export: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"serial", "created_at", "buyer_name", "buyer_email", "status", "tickets", "subtotal", "fees", "total", "payment_ref"}
	if err := w.Write(header); err != nil {
		return "", nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, o := range orders {
		record := []string{
			strconv.FormatUint(o.Serial, 10),
			o.CreatedAt.Format(time.RFC3339),
			o.Buyer.Name,
			o.Buyer.Email,
			o.Status,
			strconv.FormatUint(uint64(o.TicketCount()), 10),
			o.Subtotal.String(),
			o.Fees.String(),
			o.Total.String(),
			o.PaymentRef,
		}
		if err := w.Write(record); err != nil {
			return "", nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	filename := fmt.Sprintf("orders_%s_%04d-%02d.csv", eventID.Hex(), year, month)
	return filename, buf.Bytes(), nil
}

// ExpireOverduePendingOrders reclaims seats held by pending orders whose
// reservation window has lapsed. Each order is handled in its own
// transaction so one bad document cannot stall the whole sweep.
func (l *orderLogic) ExpireOverduePendingOrders(ctx context.Context, batchSize int64) (int64, error) {
	cutoff := time.Now().Add(-l.reservationDuration)
	orders, err := l.orderRepo.ListExpiredPending(ctx, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired pending orders: %w", err)
	}

	var reclaimed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(expireSweepConcurrency)
	for _, order := range orders {
		order := order
		g.Go(func() error {
			_, err := l.txManager.WithTransaction(gctx, func(sessCtx context.Context) (interface{}, error) {
				return nil, l.cancelAndRelease(sessCtx, order, constants.OrderStatusPending, constants.CancelReasonReservationExpired, nil, "")
			})
			if err != nil {
				if errors.Is(err, ErrInvalidTransition) {
					// Confirmed or cancelled since we listed it. Fine.
					return nil
				}
				l.logger.Error("ExpireOverduePendingOrders: failed to reclaim order",
					zap.Stringer("orderID", order.ID), zap.Error(err))
				return nil
			}
			reclaimed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	if n := reclaimed.Load(); n > 0 {
		l.logger.Info("reclaimed expired pending orders", zap.Int64("count", n))
	}

	return reclaimed.Load(), nil
}
