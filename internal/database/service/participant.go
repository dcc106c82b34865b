package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crowdsift/crowdsift/internal/consensus"
	"github.com/crowdsift/crowdsift/internal/database/dbretry"
	"github.com/crowdsift/crowdsift/internal/database/models"
	"github.com/crowdsift/crowdsift/internal/database/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Moderation policy for participants whose trust collapses. A penalty that
// leaves reputation at or below the low-trust threshold earns a strike;
// enough strikes earn a temporary ban.
const (
	LowTrustThreshold = 10
	MaxStrikes        = 3
	BanDuration       = 30 * 24 * time.Hour
)

// ParticipantService owns ledger-level business logic on top of the
// participant model.
type ParticipantService struct {
	db     *bun.DB
	model  *models.ParticipantModel
	logger *zap.Logger
}

// NewParticipant creates a new participant service.
func NewParticipant(db *bun.DB, model *models.ParticipantModel, logger *zap.Logger) *ParticipantService {
	return &ParticipantService{
		db:     db,
		model:  model,
		logger: logger.Named("participant_service"),
	}
}

// Get retrieves a ledger entry.
func (s *ParticipantService) Get(ctx context.Context, participantID uuid.UUID) (*types.Participant, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Participant, error) {
		return s.model.Get(ctx, participantID)
	})
}

// ApplyAdjustments applies feedback deltas within the caller's
// transaction. Each write is a single-statement clamp-adjust, so a
// participant resolving in several reports at once never loses an update
// to a stale read.
func (s *ParticipantService) ApplyAdjustments(
	ctx context.Context, tx bun.IDB, adjustments []consensus.Adjustment,
) error {
	for _, adjustment := range adjustments {
		reputation, err := s.model.AdjustReputation(ctx, tx, adjustment.ParticipantID, adjustment.Delta)
		if err != nil {
			return fmt.Errorf("failed to adjust participant %s: %w", adjustment.ParticipantID, err)
		}

		if adjustment.Delta < 0 && reputation <= LowTrustThreshold {
			if err := s.flagLowTrust(ctx, tx, adjustment.ParticipantID, reputation); err != nil {
				return err
			}
		}
	}

	return nil
}

// flagLowTrust records a strike and bans the participant once the strike
// budget is exhausted.
func (s *ParticipantService) flagLowTrust(
	ctx context.Context, tx bun.IDB, participantID uuid.UUID, reputation int,
) error {
	strikes, err := s.model.RecordStrike(ctx, tx, participantID)
	if err != nil {
		return err
	}

	if strikes < MaxStrikes {
		return nil
	}

	until := time.Now().Add(BanDuration)
	if err := s.model.SetBannedUntil(ctx, tx, participantID, until); err != nil {
		return err
	}

	s.logger.Info("Participant banned for repeated trust collapse",
		zap.String("participantID", participantID.String()),
		zap.Int("reputation", reputation),
		zap.Int("strikes", strikes),
		zap.Time("bannedUntil", until))

	return nil
}
