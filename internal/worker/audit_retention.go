package worker

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/winnyineza/choir-tickets/internal/conf"
	"github.com/winnyineza/choir-tickets/internal/dao/repository"
)

// AuditRetention purges audit log entries older than the configured
// retention window.
type AuditRetention struct {
	auditLogRepo repository.AuditLogRepository
	logger       *zap.Logger
	interval     time.Duration
	retention    time.Duration
}

// NewAuditRetention creates a new AuditRetention worker.
func NewAuditRetention(auditLogRepo repository.AuditLogRepository, logger *zap.Logger, cfg *conf.WorkerConfig) *AuditRetention {
	return &AuditRetention{
		auditLogRepo: auditLogRepo,
		logger:       logger.Named("AuditRetention"),
		interval:     time.Duration(cfg.AuditRetention.IntervalSeconds) * time.Second,
		retention:    time.Duration(cfg.AuditRetention.RetentionDays) * 24 * time.Hour,
	}
}

// Start begins the worker's polling loop. It respects the context for
// graceful shutdown.
func (w *AuditRetention) Start(ctx context.Context) {
	w.logger.Info("Audit retention started", zap.Duration("interval", w.interval), zap.Duration("retention", w.retention))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.purge(ctx)
		case <-ctx.Done():
			w.logger.Info("Audit retention shutting down")
			return
		}
	}
}

func (w *AuditRetention) purge(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Panic recovered in audit retention",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()

	cutoff := time.Now().Add(-w.retention)
	purged, err := w.auditLogRepo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		w.logger.Error("Failed to purge audit log entries", zap.Error(err))
		return
	}
	if purged > 0 {
		w.logger.Info("Purged audit log entries", zap.Int64("count", purged), zap.Time("cutoff", cutoff))
	}
}

var _ Worker = (*AuditRetention)(nil)
