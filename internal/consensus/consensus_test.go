package consensus_test

import (
	"testing"

	"github.com/crowdsift/crowdsift/internal/consensus"
	"github.com/crowdsift/crowdsift/internal/database/types"
	"github.com/crowdsift/crowdsift/internal/database/types/enum"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVote(value int, reputation int, confidence float64) *types.ReportVote {
	return &types.ReportVote{
		ReportID:        uuid.New(),
		VoterID:         uuid.New(),
		Value:           value,
		Confidence:      confidence,
		VoterReputation: reputation,
	}
}

func TestComputeUnanimousVerified(t *testing.T) {
	t.Parallel()

	votes := []*types.ReportVote{
		newVote(1, 80, 1.0),
		newVote(1, 60, 1.0),
		newVote(1, 70, 1.0),
	}

	outcome := consensus.Compute(votes)
	assert.InDelta(t, 1.0, outcome.Score, 1e-9)
	assert.Equal(t, 3, outcome.Count)
	assert.Equal(t, enum.ReportStatusVerified, outcome.Status)
}

func TestComputeWeightedRejected(t *testing.T) {
	t.Parallel()

	// Weights 50, 50, 2 -> score (-50-50+2)/102.
	votes := []*types.ReportVote{
		newVote(-1, 50, 1.0),
		newVote(-1, 50, 1.0),
		newVote(1, 10, 0.2),
	}

	outcome := consensus.Compute(votes)
	assert.InDelta(t, -98.0/102.0, outcome.Score, 1e-9)
	assert.Equal(t, 3, outcome.Count)
	assert.Equal(t, enum.ReportStatusRejected, outcome.Status)
}

func TestComputeBelowThresholdStaysPending(t *testing.T) {
	t.Parallel()

	votes := []*types.ReportVote{
		newVote(1, 90, 1.0),
		newVote(1, 90, 1.0),
	}

	outcome := consensus.Compute(votes)
	assert.InDelta(t, 1.0, outcome.Score, 1e-9)
	assert.Equal(t, 2, outcome.Count)
	assert.Equal(t, enum.ReportStatusPending, outcome.Status)
}

func TestComputeMiddleBandStaysPending(t *testing.T) {
	t.Parallel()

	// Score lands between the reject and verify thresholds.
	votes := []*types.ReportVote{
		newVote(1, 50, 1.0),
		newVote(1, 50, 1.0),
		newVote(-1, 50, 1.0),
		newVote(-1, 25, 1.0),
	}

	outcome := consensus.Compute(votes)
	assert.InDelta(t, 25.0/175.0, outcome.Score, 1e-9)
	assert.Equal(t, enum.ReportStatusPending, outcome.Status)
}

func TestComputeThresholdsAreStrict(t *testing.T) {
	t.Parallel()

	// Exactly 0.6 must not verify: weights 4 up, 1 down -> (4-1)/5 = 0.6.
	atVerify := []*types.ReportVote{
		newVote(1, 100, 1.0),
		newVote(1, 100, 1.0),
		newVote(1, 100, 1.0),
		newVote(1, 100, 1.0),
		newVote(-1, 100, 1.0),
	}
	outcome := consensus.Compute(atVerify)
	assert.InDelta(t, consensus.VerifyThreshold, outcome.Score, 1e-9)
	assert.Equal(t, enum.ReportStatusPending, outcome.Status)

	// Exactly -0.3 must not reject: 7 up / 13 down at weight 10 each
	// -> (70-130)/200 = -0.3.
	atReject := make([]*types.ReportVote, 0, 20)
	for i := 0; i < 7; i++ {
		atReject = append(atReject, newVote(1, 10, 1.0))
	}
	for i := 0; i < 13; i++ {
		atReject = append(atReject, newVote(-1, 10, 1.0))
	}
	outcome = consensus.Compute(atReject)
	assert.InDelta(t, consensus.RejectThreshold, outcome.Score, 1e-9)
	assert.Equal(t, enum.ReportStatusPending, outcome.Status)
}

func TestComputeEmptyAndZeroWeightSets(t *testing.T) {
	t.Parallel()

	outcome := consensus.Compute(nil)
	assert.Zero(t, outcome.Score)
	assert.Zero(t, outcome.Count)
	assert.Equal(t, enum.ReportStatusPending, outcome.Status)

	// All-zero weights: zero-reputation voters or zero confidence.
	votes := []*types.ReportVote{
		newVote(1, 0, 1.0),
		newVote(1, 50, 0.0),
		newVote(-1, 0, 0.0),
	}
	outcome = consensus.Compute(votes)
	assert.Zero(t, outcome.Score)
	assert.Equal(t, 3, outcome.Count)
	assert.Equal(t, enum.ReportStatusPending, outcome.Status)
}

func TestComputeIsIdempotent(t *testing.T) {
	t.Parallel()

	votes := []*types.ReportVote{
		newVote(-1, 50, 1.0),
		newVote(-1, 50, 1.0),
		newVote(1, 10, 0.2),
	}

	first := consensus.Compute(votes)
	second := consensus.Compute(votes)
	assert.Equal(t, first, second)
}

func TestFeedbackAdjustmentsVerified(t *testing.T) {
	t.Parallel()

	report := &types.Report{ID: uuid.New(), ReporterID: uuid.New()}
	up := newVote(1, 80, 1.0)
	down := newVote(-1, 60, 1.0)

	adjustments := consensus.FeedbackAdjustments(
		report, []*types.ReportVote{up, down}, enum.ReportStatusVerified,
	)
	require.Len(t, adjustments, 3)

	assert.Equal(t, report.ReporterID, adjustments[0].ParticipantID)
	assert.Equal(t, consensus.ReporterVerifiedDelta, adjustments[0].Delta)
	assert.Equal(t, up.VoterID, adjustments[1].ParticipantID)
	assert.Equal(t, consensus.VoterCorrectDelta, adjustments[1].Delta)
	assert.Equal(t, down.VoterID, adjustments[2].ParticipantID)
	assert.Equal(t, consensus.VoterIncorrectDelta, adjustments[2].Delta)
}

func TestFeedbackAdjustmentsRejected(t *testing.T) {
	t.Parallel()

	report := &types.Report{ID: uuid.New(), ReporterID: uuid.New()}
	up := newVote(1, 10, 0.2)
	down := newVote(-1, 50, 1.0)

	adjustments := consensus.FeedbackAdjustments(
		report, []*types.ReportVote{up, down}, enum.ReportStatusRejected,
	)
	require.Len(t, adjustments, 3)

	assert.Equal(t, consensus.ReporterRejectedDelta, adjustments[0].Delta)
	assert.Equal(t, consensus.VoterIncorrectDelta, adjustments[1].Delta)
	assert.Equal(t, consensus.VoterCorrectDelta, adjustments[2].Delta)
}

func TestFeedbackAdjustmentsNonTerminal(t *testing.T) {
	t.Parallel()

	report := &types.Report{ID: uuid.New(), ReporterID: uuid.New()}
	votes := []*types.ReportVote{newVote(1, 50, 1.0)}

	assert.Nil(t, consensus.FeedbackAdjustments(report, votes, enum.ReportStatusPending))
}

func TestFeedbackPenaltiesOutweighRewards(t *testing.T) {
	t.Parallel()

	assert.Greater(t, -consensus.VoterIncorrectDelta, consensus.VoterCorrectDelta)
	assert.Greater(t, -consensus.ReporterRejectedDelta, consensus.ReporterVerifiedDelta)
}

func TestClampReputation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, consensus.ClampReputation(-5))
	assert.Equal(t, 0, consensus.ClampReputation(0))
	assert.Equal(t, 42, consensus.ClampReputation(42))
	assert.Equal(t, 100, consensus.ClampReputation(100))
	assert.Equal(t, 100, consensus.ClampReputation(115))
}
