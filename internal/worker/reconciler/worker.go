// Package reconciler periodically re-runs consensus over pending reports.
// Recomputation is idempotent, so the sweep is safe to overlap with live
// vote traffic; it exists to settle reports whose last vote-time recompute
// was lost to a crash between commit and event emission.
package reconciler

import (
	"context"
	"time"

	"github.com/crowdsift/crowdsift/internal/database"
	"github.com/crowdsift/crowdsift/internal/database/dbretry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultInterval  = 60 * time.Second
	defaultBatchSize = 100
)

// Worker sweeps pending reports and recomputes their consensus outcome.
type Worker struct {
	db        database.Client
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

// New creates a reconciler worker. Zero interval or batch size fall back
// to defaults.
func New(db database.Client, interval time.Duration, batchSize int, logger *zap.Logger) *Worker {
	if interval <= 0 {
		interval = defaultInterval
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &Worker{
		db:        db,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.Named("reconciler"),
	}
}

// Start runs the sweep loop until the context is canceled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Reconciler started",
		zap.Duration("interval", w.interval),
		zap.Int("batchSize", w.batchSize))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Reconciler stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep recomputes one batch of pending reports. Individual failures are
// logged and skipped; the next sweep picks the report up again.
func (w *Worker) sweep(ctx context.Context) {
	ids, err := dbretry.Operation(ctx, func(ctx context.Context) ([]uuid.UUID, error) {
		return w.db.Model().Report().ListPendingIDs(ctx, w.batchSize)
	})
	if err != nil {
		w.logger.Error("Failed to list pending reports", zap.Error(err))
		return
	}

	settled := 0
	for _, id := range ids {
		outcome, err := w.db.Service().Report().Recompute(ctx, id)
		if err != nil {
			w.logger.Error("Failed to recompute report",
				zap.String("reportID", id.String()),
				zap.Error(err))
			continue
		}

		if outcome.Status.IsTerminal() {
			settled++
		}
	}

	if len(ids) > 0 {
		w.logger.Debug("Sweep finished",
			zap.Int("checked", len(ids)),
			zap.Int("settled", settled))
	}
}
