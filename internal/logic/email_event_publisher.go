package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/models"
)

// OrderEmailTopic is the broker topic for confirmation email jobs.
type OrderEmailTopic string

// EmailEventPublisher stages confirmation email jobs in the outbox so the
// email leaves the building only when the confirming transaction commits.
type EmailEventPublisher struct {
	outboxRepo      repository.OutboxRepository
	orderEmailTopic OrderEmailTopic
}

// NewEmailEventPublisher creates a new EmailEventPublisher.
func NewEmailEventPublisher(outboxRepo repository.OutboxRepository, orderEmailTopic OrderEmailTopic) *EmailEventPublisher {
	return &EmailEventPublisher{
		outboxRepo:      outboxRepo,
		orderEmailTopic: orderEmailTopic,
	}
}

// PublishOrderConfirmation stages the confirmation email payload for an order.
func (p *EmailEventPublisher) PublishOrderConfirmation(ctx context.Context, order *models.Order, checkinToken string) error {
	emailPayload := map[string]interface{}{
		"order_id":      order.ID.Hex(),
		"serial":        order.Serial,
		"buyer_name":    order.Buyer.Name,
		"buyer_email":   order.Buyer.Email,
		"total":         order.Total.String(),
		"ticket_count":  order.TicketCount(),
		"checkin_token": checkinToken,
	}
	payloadBytes, err := json.Marshal(emailPayload)
	if err != nil {
		// Marshalling errors are fatal for the transaction, the payload
		// cannot be constructed.
		return fmt.Errorf("failed to marshal order confirmation payload: %w", err)
	}

	outboxMsg := &models.OutboxMessage{
		ID:        primitive.NewObjectID(),
		Topic:     string(p.orderEmailTopic),
		Payload:   string(payloadBytes),
		Status:    models.OutboxStatusPending,
		CreatedAt: time.Now(),
	}

	if err := p.outboxRepo.Create(ctx, outboxMsg); err != nil {
		return fmt.Errorf("failed to create order confirmation outbox message: %w", err)
	}
	return nil
}
