package handlers

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/conf"
	"github.com/winnyineza/choir-tickets/internal/dto"
	"github.com/winnyineza/choir-tickets/internal/logic"
	"github.com/winnyineza/choir-tickets/internal/models"
)

// Payment provider outcome values carried in the event payload.
const (
	paymentStatusSucceeded = "succeeded"
	paymentStatusFailed    = "failed"
)

// PaymentEventHandler consumes payment provider callbacks and settles the
// matching pending order, either confirming it and minting the admission
// token or cancelling it and releasing the seats.
type PaymentEventHandler struct {
	orderLogic logic.OrderLogic
	logger     *zap.Logger
	cfg        *conf.RabbitMQConfig
}

// NewPaymentEventHandler creates a new handler for payment provider events.
func NewPaymentEventHandler(orderLogic logic.OrderLogic, logger *zap.Logger, cfg *conf.RabbitMQConfig) *PaymentEventHandler {
	return &PaymentEventHandler{
		orderLogic: orderLogic,
		logger:     logger.Named("PaymentEventHandler"),
		cfg:        cfg,
	}
}

// QueueName returns the name of the queue this handler subscribes to.
func (h *PaymentEventHandler) QueueName() string {
	return h.cfg.PaymentEventTopic
}

// Handle processes an incoming payment event. A nil return acknowledges the
// message; a non-nil return requeues it.
func (h *PaymentEventHandler) Handle(ctx context.Context, d amqp.Delivery) error {
	var event dto.PaymentEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		h.logger.Error("Failed to unmarshal payment event", zap.Error(err), zap.ByteString("body", d.Body))
		return nil // Poison pill, ACK and remove.
	}

	oid, err := primitive.ObjectIDFromHex(event.OrderID)
	if err != nil {
		h.logger.Error("Invalid order id in payment event", zap.Error(err), zap.String("order_id", event.OrderID))
		return nil // Invalid format, ACK and remove.
	}

	switch event.Status {
	case paymentStatusSucceeded:
		_, err = h.orderLogic.ConfirmOrder(ctx, &dto.ConfirmOrderRequest{
			OrderID:    oid,
			PaymentRef: event.PaymentRef,
			Operator:   &models.SystemOperator,
		})
	case paymentStatusFailed:
		err = h.orderLogic.CancelOrder(ctx, &dto.CancelOrderRequest{
			OrderID:  oid,
			Reason:   "payment failed",
			Operator: &models.SystemOperator,
		})
	default:
		h.logger.Warn("Unknown payment event status, dropping",
			zap.String("status", event.Status),
			zap.Stringer("orderID", oid),
		)
		return nil
	}

	if err != nil {
		// An order that expired, settled already or never existed will not
		// become processable on a redelivery.
		if errors.Is(err, logic.ErrOrderNotFound) ||
			errors.Is(err, logic.ErrOrderExpired) ||
			errors.Is(err, logic.ErrInvalidTransition) ||
			errors.Is(err, logic.ErrPermanent) {
			h.logger.Warn("Dropping unprocessable payment event",
				zap.Stringer("orderID", oid),
				zap.String("status", event.Status),
				zap.Error(err),
			)
			return nil
		}
		h.logger.Error("Failed to settle order from payment event, will retry",
			zap.Stringer("orderID", oid),
			zap.Error(err),
		)
		return err // The error is returned, so the message will be requeued.
	}

	h.logger.Info("Settled order from payment event",
		zap.Stringer("orderID", oid),
		zap.String("status", event.Status),
	)
	return nil
}

var _ MessageHandler = (*PaymentEventHandler)(nil)
