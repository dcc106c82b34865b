package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crowdsift/crowdsift/internal/consensus"
	"github.com/crowdsift/crowdsift/internal/database/dbretry"
	"github.com/crowdsift/crowdsift/internal/database/models"
	"github.com/crowdsift/crowdsift/internal/database/types"
	"github.com/crowdsift/crowdsift/internal/database/types/enum"
	"github.com/crowdsift/crowdsift/internal/events"
	"github.com/crowdsift/crowdsift/internal/spatial"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ReportService owns the report lifecycle: submission, the vote submission
// guard, consensus recomputation and the one-shot reputation feedback on
// the pending -> terminal edge.
type ReportService struct {
	db           *bun.DB
	reports      *models.ReportModel
	votes        *models.VoteModel
	participants *models.ParticipantModel
	ledger       *ParticipantService
	emitter      *events.Emitter
	logger       *zap.Logger
}

// NewReport creates a new report service.
func NewReport(
	db *bun.DB,
	reports *models.ReportModel,
	votes *models.VoteModel,
	participants *models.ParticipantModel,
	ledger *ParticipantService,
	emitter *events.Emitter,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		db:           db,
		reports:      reports,
		votes:        votes,
		participants: participants,
		ledger:       ledger,
		emitter:      emitter,
		logger:       logger.Named("report_service"),
	}
}

// SubmitReportParams carries a new incident submission. ReporterReputation
// is the identity layer's current value, snapshotted onto the report.
type SubmitReportParams struct {
	Kind               enum.ReportKind
	Severity           int
	Longitude          float64
	Latitude           float64
	Description        string
	ReporterID         uuid.UUID
	ReporterReputation int
}

// SubmitVoteParams carries one participant's judgement on a report.
// Confidence is optional and defaults to 0.5.
type SubmitVoteParams struct {
	ReportID        uuid.UUID
	VoterID         uuid.UUID
	VoterReputation int
	Value           int
	Confidence      *float64
	Comment         string
}

// VoteResult is returned to the voter after the guarded transaction commits.
type VoteResult struct {
	Status         enum.ReportStatus `json:"status"`
	ConsensusScore float64           `json:"consensusScore"`
	VoteCount      int               `json:"voteCount"`
}

// SubmitReport validates and persists a new report as pending. The spatial
// key is derived here, exactly once; it is never recomputed afterwards.
func (s *ReportService) SubmitReport(
	ctx context.Context, params *SubmitReportParams,
) (*types.Report, error) {
	if !params.Kind.IsValid() {
		return nil, types.ErrInvalidKind
	}
	if err := types.ValidateSeverity(params.Severity); err != nil {
		return nil, err
	}
	if err := types.ValidateCoordinates(params.Longitude, params.Latitude); err != nil {
		return nil, err
	}

	report := &types.Report{
		ID:                 uuid.New(),
		Kind:               params.Kind,
		Severity:           params.Severity,
		Longitude:          params.Longitude,
		Latitude:           params.Latitude,
		SpatialKey:         spatial.Key(params.Longitude, params.Latitude, spatial.DefaultPrecision),
		Description:        params.Description,
		Status:             enum.ReportStatusPending,
		ReporterID:         params.ReporterID,
		ReporterReputation: consensus.ClampReputation(params.ReporterReputation),
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.participants.EnsureExists(ctx, tx, params.ReporterID, report.ReporterReputation); err != nil {
			return err
		}
		if err := s.participants.IncrementReportCount(ctx, tx, params.ReporterID); err != nil {
			return err
		}
		return s.reports.Insert(ctx, tx, report)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit report: %w", err)
	}

	s.logger.Info("Report submitted",
		zap.String("reportID", report.ID.String()),
		zap.String("kind", report.Kind.String()),
		zap.String("spatialKey", report.SpatialKey))

	return report, nil
}

// SubmitVote runs the vote submission guard and, on success, recomputes
// consensus for the report. The entire unit - guard checks, vote insert,
// recompute, triple write, conditional feedback - runs inside one
// transaction holding the report row lock, so concurrent voters on the
// same report serialize and never overwrite each other's recompute.
func (s *ReportService) SubmitVote(
	ctx context.Context, params *SubmitVoteParams,
) (*VoteResult, error) {
	var (
		result VoteResult
		res    resolution
	)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		report, err := s.reports.GetForUpdate(ctx, tx, params.ReportID)
		if err != nil {
			return err
		}

		// Guard checks, in precondition order.
		if params.VoterID == report.ReporterID {
			return types.ErrSelfVote
		}

		exists, err := s.votes.Exists(ctx, tx, params.ReportID, params.VoterID)
		if err != nil {
			return err
		}
		if exists {
			return types.ErrDuplicateVote
		}

		confidence := types.DefaultConfidence
		if params.Confidence != nil {
			confidence = *params.Confidence
		}
		if err := types.ValidateVote(params.Value, confidence); err != nil {
			return err
		}

		voterReputation := consensus.ClampReputation(params.VoterReputation)
		if err := s.participants.EnsureExists(ctx, tx, params.VoterID, voterReputation); err != nil {
			return err
		}

		// The composite primary key is the authoritative duplicate
		// signal; the lookup above only gives the cheaper error path.
		vote := &types.ReportVote{
			ReportID:        params.ReportID,
			VoterID:         params.VoterID,
			Value:           params.Value,
			Confidence:      confidence,
			VoterReputation: voterReputation,
			Comment:         params.Comment,
		}
		if err := s.votes.Insert(ctx, tx, vote); err != nil {
			return err
		}

		if err := s.participants.IncrementValidationCount(ctx, tx, params.VoterID); err != nil {
			return err
		}

		res, err = s.resolveLocked(ctx, tx, report)
		if err != nil {
			return err
		}

		result = VoteResult{
			Status:         res.outcome.Status,
			ConsensusScore: res.outcome.Score,
			VoteCount:      res.outcome.Count,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitResolution(res)

	return &result, nil
}

// Recompute re-derives the consensus outcome for a report from its full
// vote set. Idempotent: with no intervening votes, repeated calls yield
// identical results and the feedback step never fires twice.
func (s *ReportService) Recompute(ctx context.Context, reportID uuid.UUID) (consensus.Outcome, error) {
	var res resolution

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		report, err := s.reports.GetForUpdate(ctx, tx, reportID)
		if err != nil {
			return err
		}

		res, err = s.resolveLocked(ctx, tx, report)

		return err
	})
	if err != nil {
		return consensus.Outcome{}, err
	}

	s.emitResolution(res)

	return res.outcome, nil
}

// GetReportDetail returns a report with its anonymized vote list. Voter
// identities and comments are withheld from the response.
func (s *ReportService) GetReportDetail(
	ctx context.Context, reportID uuid.UUID,
) (*types.ReportDetail, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ReportDetail, error) {
		report, err := s.reports.Get(ctx, reportID)
		if err != nil {
			return nil, err
		}

		votes, err := s.votes.ListForReport(ctx, s.db, reportID)
		if err != nil {
			return nil, err
		}

		summaries := make([]*types.VoteSummary, len(votes))
		for i, vote := range votes {
			summaries[i] = &types.VoteSummary{
				Value:           vote.Value,
				Confidence:      vote.Confidence,
				VoterReputation: vote.VoterReputation,
				VotedAt:         vote.VotedAt,
			}
		}

		return &types.ReportDetail{Report: report, Votes: summaries}, nil
	})
}

// resolution captures what a recompute decided, for post-commit emission.
type resolution struct {
	report       *types.Report
	outcome      consensus.Outcome
	transitioned bool
}

// resolveLocked recomputes consensus from the complete vote set and writes
// the {score, count, status} triple atomically. Caller must hold the
// report row lock. Feedback fires only on the single pending -> terminal
// edge, guarded by the reviewed_at marker; a feedback failure rolls back
// the status flip so a retry reattempts it exactly once.
func (s *ReportService) resolveLocked(
	ctx context.Context, tx bun.Tx, report *types.Report,
) (resolution, error) {
	votes, err := s.votes.ListForReport(ctx, tx, report.ID)
	if err != nil {
		return resolution{}, err
	}

	outcome := consensus.Compute(votes)

	transitioned := false
	switch {
	case report.Status.IsTerminal():
		// Terminal is sticky: late votes update score and count only.
		outcome.Status = report.Status
	case outcome.Status.IsTerminal() && report.ReviewedAt == nil:
		transitioned = true
	}

	var reviewedAt *time.Time
	if transitioned {
		now := time.Now()
		reviewedAt = &now

		adjustments := consensus.FeedbackAdjustments(report, votes, outcome.Status)
		if err := s.ledger.ApplyAdjustments(ctx, tx, adjustments); err != nil {
			return resolution{}, fmt.Errorf("failed to apply reputation feedback: %w", err)
		}
	}

	err = s.reports.ApplyOutcome(
		ctx, tx, report.ID, outcome.Score, outcome.Count, outcome.Status, reviewedAt,
	)
	if err != nil {
		return resolution{}, err
	}

	return resolution{report: report, outcome: outcome, transitioned: transitioned}, nil
}

// emitResolution publishes terminal decisions after commit. Best-effort:
// the emitter logs failures and never blocks the caller.
func (s *ReportService) emitResolution(res resolution) {
	if !res.transitioned {
		return
	}

	s.logger.Info("Report settled",
		zap.String("reportID", res.report.ID.String()),
		zap.String("status", res.outcome.Status.String()),
		zap.Float64("consensusScore", res.outcome.Score),
		zap.Int("voteCount", res.outcome.Count))

	if s.emitter == nil {
		return
	}

	s.emitter.StatusChanged(&events.StatusChanged{
		ReportID:       res.report.ID,
		Status:         res.outcome.Status,
		ConsensusScore: res.outcome.Score,
	})

	if res.outcome.Status == enum.ReportStatusVerified {
		s.emitter.ReportVerified(&events.ReportVerified{
			ReportID:   res.report.ID,
			SpatialKey: res.report.SpatialKey,
		})
	}
}
