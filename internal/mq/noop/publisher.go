package noop

import (
	"context"

	"github.com/winnyineza/choir-tickets/internal/mq"
)

// Publisher implements mq.Publisher without touching a broker. It backs
// environments where RabbitMQ is not available, such as local development
// and the test suite.
type Publisher struct{}

// NewPublisher creates a new no-op Publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(ctx context.Context, topic string, body []byte) error {
	return nil
}

func (p *Publisher) Close() {}

var _ mq.Publisher = (*Publisher)(nil)
