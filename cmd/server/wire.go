//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/winnyineza/choir-tickets/internal/app"
	"github.com/winnyineza/choir-tickets/internal/conf"
	"github.com/winnyineza/choir-tickets/internal/dao/mongodb"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
	"github.com/winnyineza/choir-tickets/internal/limiter"
	"github.com/winnyineza/choir-tickets/internal/logger"
	"github.com/winnyineza/choir-tickets/internal/logic"
	"github.com/winnyineza/choir-tickets/internal/middleware/http"
	"github.com/winnyineza/choir-tickets/internal/mq"
	"github.com/winnyineza/choir-tickets/internal/mq/rabbitmq"
	"github.com/winnyineza/choir-tickets/internal/provider"
	"github.com/winnyineza/choir-tickets/internal/worker"
	"github.com/winnyineza/choir-tickets/pkg/snowflake"
)

// baseProviders contains the shared components: config slices, storage,
// crypto, limiter and the business logic layer.
var baseProviders = wire.NewSet(
	wire.FieldsOf(new(*conf.AppConfig), "LogConfig", "MongodbConfig", "WorkerConfig", "RedisConfig", "RateLimiterConfig"),
	provider.ProvideAppMode,
	logger.NewLogger,
	mongodb.NewMongoDB,
	provider.ProvideDatabase,
	provider.ProvideMachineID,
	provider.ProvideOrderEmailTopic,
	provider.ProvideTransactionManager,
	provider.ProvideJwtGenerator,
	provider.ProvideValidator,
	provider.ProvideRedisNamespace,
	provider.ProvideRedisClient,
	limiter.NewManager,
	snowflake.NewGenerator,
	mongodb.NewTiersDAO,
	wire.Bind(new(repository.TiersRepository), new(*mongodb.TiersDAO)),
	mongodb.NewOrdersDAO,
	wire.Bind(new(repository.OrdersRepository), new(*mongodb.OrdersDAO)),
	mongodb.NewOperatorsDAO,
	wire.Bind(new(repository.OperatorsRepository), new(*mongodb.OperatorsDAO)),
	mongodb.NewInvitesDAO,
	wire.Bind(new(repository.InvitesRepository), new(*mongodb.InvitesDAO)),
	mongodb.NewStaffDAO,
	wire.Bind(new(repository.StaffRepository), new(*mongodb.StaffDAO)),
	mongodb.NewAuditLogDAO,
	wire.Bind(new(repository.AuditLogRepository), new(*mongodb.AuditLogDAO)),
	mongodb.NewOutboxDAO,
	wire.Bind(new(repository.OutboxRepository), new(*mongodb.OutboxDAO)),
	logic.NewEmailEventPublisher,
	logic.OrderLogicProviderSet,
	logic.NewTierLogic,
	logic.NewCheckinLogic,
	logic.NewAuthLogic,
	logic.NewInviteLogic,
	logic.NewOperatorLogic,
	logic.NewStaffLogic,
)

// workerProviders contains the RabbitMQ publisher and every background worker.
var workerProviders = wire.NewSet(
	wire.FieldsOf(new(*conf.AppConfig), "RabbitMQConfig"),
	rabbitmq.NewPublisher,
	wire.Bind(new(mq.Publisher), new(*rabbitmq.Publisher)),
	worker.NewOutboxProcessor,
	worker.NewOrderExpirer,
	worker.NewAuditRetention,
	provideWorkers,
)

// provideWorkers collects the background workers into a slice for the app.
func provideWorkers(p *worker.OutboxProcessor, e *worker.OrderExpirer, a *worker.AuditRetention) []worker.Worker {
	return []worker.Worker{p, e, a}
}

func InitializeApp(appConfig *conf.AppConfig) (*app.App, func(), error) {
	wire.Build(
		baseProviders,
		workerProviders,
		http.NewAuthMiddleware,
		app.NewRouter,
		app.NewApp,
	)
	return nil, nil, nil
}
