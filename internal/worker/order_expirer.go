package worker

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/conf"
	"github.com/winnyineza/choir-tickets/internal/logic"
)

// OrderExpirer periodically cancels pending orders whose reservation window
// has lapsed and returns their seats to the pool.
type OrderExpirer struct {
	orderLogic logic.OrderLogic
	logger     *zap.Logger
	interval   time.Duration
	batchSize  int64
}

// NewOrderExpirer creates a new OrderExpirer.
func NewOrderExpirer(orderLogic logic.OrderLogic, logger *zap.Logger, cfg *conf.WorkerConfig) *OrderExpirer {
	return &OrderExpirer{
		orderLogic: orderLogic,
		logger:     logger.Named("OrderExpirer"),
		interval:   time.Duration(cfg.OrderExpirer.IntervalSeconds) * time.Second,
		batchSize:  int64(cfg.OrderExpirer.BatchSize),
	}
}

// Start begins the worker's polling loop. It respects the context for
// graceful shutdown.
func (w *OrderExpirer) Start(ctx context.Context) {
	w.logger.Info("Order expirer started", zap.Duration("interval", w.interval), zap.Int64("batchSize", w.batchSize))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-ctx.Done():
			w.logger.Info("Order expirer shutting down")
			return
		}
	}
}

func (w *OrderExpirer) sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Panic recovered in order expirer",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()

	expired, err := w.orderLogic.ExpireOverduePendingOrders(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("Failed to expire overdue orders", zap.Error(err))
		return
	}
	if expired > 0 {
		w.logger.Info("Expired overdue pending orders", zap.Int64("count", expired))
	}
}

var _ Worker = (*OrderExpirer)(nil)
