// Package consensus holds the deterministic scoring and status policy for
// report validation. Everything here is a pure function of the vote set so
// that recomputation is idempotent by construction: callers always pass the
// complete current vote set, never deltas.
package consensus

import (
	"github.com/crowdsift/crowdsift/internal/database/types"
	"github.com/crowdsift/crowdsift/internal/database/types/enum"
	"github.com/google/uuid"
)

// Status policy constants. A report is only eligible for a terminal status
// once it has gathered MinValidations votes; the middle score band between
// the two thresholds is intentionally non-terminal.
const (
	MinValidations  = 3
	VerifyThreshold = 0.6
	RejectThreshold = -0.3
)

// Reputation feedback applied on the single pending -> terminal edge.
// Penalties deliberately outweigh rewards so careless voting and
// speculative reporting cost more than lucky correctness earns.
const (
	ReporterVerifiedDelta = 10
	ReporterRejectedDelta = -15
	VoterCorrectDelta     = 5
	VoterIncorrectDelta   = -10
)

// Outcome is the result of recomputing a report's full vote set.
type Outcome struct {
	Score  float64
	Count  int
	Status enum.ReportStatus
}

// Compute derives the weighted consensus outcome from the complete vote
// set. Each vote contributes value * reputation_at_vote * confidence; the
// score is the weighted mean in [-1, 1], or 0 for an empty or all-zero
// weight set.
func Compute(votes []*types.ReportVote) Outcome {
	var weightSum, valueSum float64
	for _, vote := range votes {
		weight := vote.Weight()
		weightSum += weight
		valueSum += float64(vote.Value) * weight
	}

	outcome := Outcome{Count: len(votes), Status: enum.ReportStatusPending}
	if weightSum > 0 {
		outcome.Score = valueSum / weightSum
	}

	// Below the vote threshold the status is always pending, regardless
	// of the computed score.
	if outcome.Count < MinValidations {
		return outcome
	}

	switch {
	case outcome.Score > VerifyThreshold:
		outcome.Status = enum.ReportStatusVerified
	case outcome.Score < RejectThreshold:
		outcome.Status = enum.ReportStatusRejected
	}

	return outcome
}

// Adjustment is a single clamped reputation delta for a participant.
type Adjustment struct {
	ParticipantID uuid.UUID
	Delta         int
}

// FeedbackAdjustments derives the ledger deltas owed to the reporter and
// every voter when a report settles into the given terminal status.
// Returns nil for non-terminal statuses. Clamping into [0,100] happens at
// the ledger write, not here.
func FeedbackAdjustments(
	report *types.Report, votes []*types.ReportVote, status enum.ReportStatus,
) []Adjustment {
	if !status.IsTerminal() {
		return nil
	}

	adjustments := make([]Adjustment, 0, len(votes)+1)

	reporterDelta := ReporterRejectedDelta
	correctSign := -1
	if status == enum.ReportStatusVerified {
		reporterDelta = ReporterVerifiedDelta
		correctSign = 1
	}
	adjustments = append(adjustments, Adjustment{
		ParticipantID: report.ReporterID,
		Delta:         reporterDelta,
	})

	for _, vote := range votes {
		delta := VoterIncorrectDelta
		if vote.Value == correctSign {
			delta = VoterCorrectDelta
		}
		adjustments = append(adjustments, Adjustment{
			ParticipantID: vote.VoterID,
			Delta:         delta,
		})
	}

	return adjustments
}

// ClampReputation bounds a raw reputation value into the ledger range.
// The SQL clamp-adjust is authoritative; this mirrors it for callers that
// need the post-adjustment value without a round trip.
func ClampReputation(value int) int {
	if value < types.MinReputation {
		return types.MinReputation
	}
	if value > types.MaxReputation {
		return types.MaxReputation
	}
	return value
}
