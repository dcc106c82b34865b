package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crowdsift/crowdsift/internal/database/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ParticipantModel is the reputation ledger. Every reputation write goes
// through a single-statement clamp-adjust so concurrent resolutions never
// do last-write-wins on raw reads.
type ParticipantModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewParticipant creates a new participant model.
func NewParticipant(db *bun.DB, logger *zap.Logger) *ParticipantModel {
	return &ParticipantModel{
		db:     db,
		logger: logger.Named("db_participant"),
	}
}

// Get retrieves a ledger entry by participant ID.
func (p *ParticipantModel) Get(ctx context.Context, participantID uuid.UUID) (*types.Participant, error) {
	participant := new(types.Participant)

	err := p.db.NewSelect().
		Model(participant).
		Where("id = ?", participantID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	return participant, nil
}

// EnsureExists creates the ledger row on first contact, seeded with the
// caller-supplied reputation. The identity layer supplies that value; the
// ledger is the sole writer afterwards, so an existing row is untouched.
func (p *ParticipantModel) EnsureExists(
	ctx context.Context, tx bun.IDB, participantID uuid.UUID, reputation int,
) error {
	participant := &types.Participant{
		ID:         participantID,
		Reputation: reputation,
		UpdatedAt:  time.Now(),
	}

	_, err := tx.NewInsert().
		Model(participant).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure participant: %w", err)
	}

	return nil
}

// AdjustReputation applies a clamped delta atomically and returns the
// resulting reputation.
func (p *ParticipantModel) AdjustReputation(
	ctx context.Context, tx bun.IDB, participantID uuid.UUID, delta int,
) (int, error) {
	var reputation int

	err := tx.NewUpdate().
		Model((*types.Participant)(nil)).
		Set("reputation = GREATEST(?, LEAST(?, reputation + ?))",
			types.MinReputation, types.MaxReputation, delta).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", participantID).
		Returning("reputation").
		Scan(ctx, &reputation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, types.ErrParticipantNotFound
		}
		return 0, fmt.Errorf("failed to adjust reputation: %w", err)
	}

	return reputation, nil
}

// IncrementReportCount bumps the submission counter.
func (p *ParticipantModel) IncrementReportCount(
	ctx context.Context, tx bun.IDB, participantID uuid.UUID,
) error {
	_, err := tx.NewUpdate().
		Model((*types.Participant)(nil)).
		Set("report_count = report_count + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", participantID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment report count: %w", err)
	}

	return nil
}

// IncrementValidationCount bumps the vote counter.
func (p *ParticipantModel) IncrementValidationCount(
	ctx context.Context, tx bun.IDB, participantID uuid.UUID,
) error {
	_, err := tx.NewUpdate().
		Model((*types.Participant)(nil)).
		Set("validation_count = validation_count + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", participantID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment validation count: %w", err)
	}

	return nil
}

// RecordStrike increments the strike counter and returns the new total.
func (p *ParticipantModel) RecordStrike(
	ctx context.Context, tx bun.IDB, participantID uuid.UUID,
) (int, error) {
	var strikes int

	err := tx.NewUpdate().
		Model((*types.Participant)(nil)).
		Set("strike_count = strike_count + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", participantID).
		Returning("strike_count").
		Scan(ctx, &strikes)
	if err != nil {
		return 0, fmt.Errorf("failed to record strike: %w", err)
	}

	return strikes, nil
}

// SetBannedUntil stamps the moderation ban window on the ledger entry.
func (p *ParticipantModel) SetBannedUntil(
	ctx context.Context, tx bun.IDB, participantID uuid.UUID, until time.Time,
) error {
	_, err := tx.NewUpdate().
		Model((*types.Participant)(nil)).
		Set("banned_until = ?", until).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", participantID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set ban window: %w", err)
	}

	return nil
}
