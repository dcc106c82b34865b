package models

import (
	"context"
	"fmt"
	"time"

	"github.com/crowdsift/crowdsift/internal/database/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// VoteModel handles database operations for vote records.
type VoteModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewVote creates a new vote model.
func NewVote(db *bun.DB, logger *zap.Logger) *VoteModel {
	return &VoteModel{
		db:     db,
		logger: logger.Named("db_vote"),
	}
}

// Insert persists a vote. The composite primary key (report_id, voter_id)
// makes the insert the authoritative duplicate check: a conflicting row
// leaves the insert with zero affected rows and the caller gets
// ErrDuplicateVote, regardless of what any prior read claimed.
func (v *VoteModel) Insert(ctx context.Context, tx bun.IDB, vote *types.ReportVote) error {
	vote.VotedAt = time.Now()

	res, err := tx.NewInsert().
		Model(vote).
		On("CONFLICT (report_id, voter_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}
	if affected == 0 {
		return types.ErrDuplicateVote
	}

	return nil
}

// Exists reports whether the voter already voted on the report.
func (v *VoteModel) Exists(
	ctx context.Context, tx bun.IDB, reportID, voterID uuid.UUID,
) (bool, error) {
	exists, err := tx.NewSelect().
		Model((*types.ReportVote)(nil)).
		Where("report_id = ?", reportID).
		Where("voter_id = ?", voterID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing vote: %w", err)
	}

	return exists, nil
}

// ListForReport retrieves the complete vote set for a report. Consensus is
// always recomputed from this full set, never from a cached aggregate.
func (v *VoteModel) ListForReport(
	ctx context.Context, tx bun.IDB, reportID uuid.UUID,
) ([]*types.ReportVote, error) {
	var votes []*types.ReportVote

	err := tx.NewSelect().
		Model(&votes).
		Where("report_id = ?", reportID).
		Order("voted_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	return votes, nil
}

// CountForReport returns the number of persisted votes for a report.
func (v *VoteModel) CountForReport(ctx context.Context, reportID uuid.UUID) (int, error) {
	count, err := v.db.NewSelect().
		Model((*types.ReportVote)(nil)).
		Where("report_id = ?", reportID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}

	return count, nil
}
