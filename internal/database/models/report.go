package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crowdsift/crowdsift/internal/database/types"
	"github.com/crowdsift/crowdsift/internal/database/types/enum"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ReportModel handles database operations for incident reports.
type ReportModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewReport creates a new report model.
func NewReport(db *bun.DB, logger *zap.Logger) *ReportModel {
	return &ReportModel{
		db:     db,
		logger: logger.Named("db_report"),
	}
}

// Insert persists a freshly submitted report.
func (r *ReportModel) Insert(ctx context.Context, tx bun.IDB, report *types.Report) error {
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now

	_, err := tx.NewInsert().
		Model(report).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

// Get retrieves a report by ID.
func (r *ReportModel) Get(ctx context.Context, reportID uuid.UUID) (*types.Report, error) {
	report := new(types.Report)

	err := r.db.NewSelect().
		Model(report).
		Where("id = ?", reportID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// GetForUpdate locks the report row for the duration of the surrounding
// transaction. This is the per-report critical section: every vote insert,
// recompute and status write for the same report serializes on this lock.
func (r *ReportModel) GetForUpdate(
	ctx context.Context, tx bun.IDB, reportID uuid.UUID,
) (*types.Report, error) {
	report := new(types.Report)

	err := tx.NewSelect().
		Model(report).
		Where("id = ?", reportID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to lock report: %w", err)
	}

	return report, nil
}

// ApplyOutcome writes the recomputed {score, count, status} triple in one
// UPDATE so no partially-applied triple is ever observable. reviewedAt is
// set in the same statement when the report settles, flipping the
// feedback-settled guard atomically with the status.
func (r *ReportModel) ApplyOutcome(
	ctx context.Context, tx bun.IDB, reportID uuid.UUID,
	score float64, count int, status enum.ReportStatus, reviewedAt *time.Time,
) error {
	query := tx.NewUpdate().
		Model((*types.Report)(nil)).
		Set("consensus_score = ?", score).
		Set("vote_count = ?", count).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", reportID)

	if reviewedAt != nil {
		query = query.Set("reviewed_at = ?", *reviewedAt)
	}

	_, err := query.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply consensus outcome: %w", err)
	}

	return nil
}

// ListPendingIDs returns up to limit pending report IDs, oldest first.
// Used by the reconciler sweep; recomputation is idempotent so re-listing
// the same report is harmless.
func (r *ReportModel) ListPendingIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	err := r.db.NewSelect().
		Model((*types.Report)(nil)).
		Column("id").
		Where("status = ?", enum.ReportStatusPending).
		Where("vote_count >= ?", 1).
		Order("updated_at ASC").
		Limit(limit).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reports: %w", err)
	}

	return ids, nil
}

// CountBySpatialKey returns the number of verified reports in a geocode
// cell. Exposed for heatmap consumers that prefer pull over pub/sub.
func (r *ReportModel) CountBySpatialKey(ctx context.Context, spatialKey string) (int, error) {
	count, err := r.db.NewSelect().
		Model((*types.Report)(nil)).
		Where("spatial_key = ?", spatialKey).
		Where("status = ?", enum.ReportStatusVerified).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports by spatial key: %w", err)
	}

	return count, nil
}
