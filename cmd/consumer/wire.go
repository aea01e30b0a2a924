//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/winnyineza/choir-tickets/cmd/consumer/handlers"
	"github.com/winnyineza/choir-tickets/internal/conf"
	"github.com/winnyineza/choir-tickets/internal/dao/mongodb"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/logger"
	"github.com/winnyineza/choir-tickets/internal/logic"
	"github.com/winnyineza/choir-tickets/internal/mq/rabbitmq"
	"github.com/winnyineza/choir-tickets/internal/provider"
	"github.com/winnyineza/choir-tickets/pkg/snowflake"
)

// provideHandlers collects all individual MessageHandlers into a slice.
func provideHandlers(paymentHandler *handlers.PaymentEventHandler) []handlers.MessageHandler {
	return []handlers.MessageHandler{
		paymentHandler,
	}
}

// InitializeConsumerApp creates the consumer application and its dependencies.
func InitializeConsumerApp(appConfig *conf.AppConfig) (*ConsumerApp, func(), error) {
	wire.Build(
		wire.FieldsOf(new(*conf.AppConfig), "LogConfig", "MongodbConfig", "RabbitMQConfig"),
		provider.ProvideAppMode,

		logger.NewLogger,
		mongodb.NewMongoDB,
		provider.ProvideDatabase,
		provider.ProvideTransactionManager,
		provider.ProvideJwtGenerator,
		provider.ProvideMachineID,
		provider.ProvideOrderEmailTopic,
		snowflake.NewGenerator,

		mongodb.NewOrdersDAO,
		wire.Bind(new(repository.OrdersRepository), new(*mongodb.OrdersDAO)),
		mongodb.NewTiersDAO,
		wire.Bind(new(repository.TiersRepository), new(*mongodb.TiersDAO)),
		mongodb.NewAuditLogDAO,
		wire.Bind(new(repository.AuditLogRepository), new(*mongodb.AuditLogDAO)),
		mongodb.NewOutboxDAO,
		wire.Bind(new(repository.OutboxRepository), new(*mongodb.OutboxDAO)),

		logic.NewEmailEventPublisher,
		logic.OrderLogicProviderSet,

		rabbitmq.NewConsumer,

		handlers.NewPaymentEventHandler,
		provideHandlers,

		NewConsumerApp,
	)
	return nil, nil, nil
}
