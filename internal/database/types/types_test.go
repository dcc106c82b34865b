package types_test

import (
	"testing"
	"time"

	"github.com/crowdsift/crowdsift/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateVote(t *testing.T) {
	t.Parallel()

	require.NoError(t, types.ValidateVote(1, 0.5))
	require.NoError(t, types.ValidateVote(-1, 0))
	require.NoError(t, types.ValidateVote(1, 1))

	assert.ErrorIs(t, types.ValidateVote(0, 0.5), types.ErrInvalidVoteValue)
	assert.ErrorIs(t, types.ValidateVote(2, 0.5), types.ErrInvalidVoteValue)
	assert.ErrorIs(t, types.ValidateVote(1, -0.1), types.ErrInvalidConfidence)
	assert.ErrorIs(t, types.ValidateVote(1, 1.1), types.ErrInvalidConfidence)
}

func TestValidateSeverity(t *testing.T) {
	t.Parallel()

	for severity := types.MinSeverity; severity <= types.MaxSeverity; severity++ {
		require.NoError(t, types.ValidateSeverity(severity))
	}

	assert.ErrorIs(t, types.ValidateSeverity(0), types.ErrInvalidSeverity)
	assert.ErrorIs(t, types.ValidateSeverity(6), types.ErrInvalidSeverity)
}

func TestValidateCoordinates(t *testing.T) {
	t.Parallel()

	require.NoError(t, types.ValidateCoordinates(151.2093, -33.8688))
	require.NoError(t, types.ValidateCoordinates(-180, 90))
	require.NoError(t, types.ValidateCoordinates(0, 0))

	assert.ErrorIs(t, types.ValidateCoordinates(180.5, 0), types.ErrInvalidCoordinates)
	assert.ErrorIs(t, types.ValidateCoordinates(0, -90.5), types.ErrInvalidCoordinates)
}

func TestVoteWeight(t *testing.T) {
	t.Parallel()

	vote := &types.ReportVote{VoterReputation: 80, Confidence: 0.5}
	assert.InDelta(t, 40.0, vote.Weight(), 1e-9)

	zero := &types.ReportVote{VoterReputation: 0, Confidence: 1.0}
	assert.Zero(t, zero.Weight())
}

func TestParticipantIsBanned(t *testing.T) {
	t.Parallel()

	now := time.Now()

	unbanned := &types.Participant{}
	assert.False(t, unbanned.IsBanned(now))

	past := now.Add(-time.Hour)
	expired := &types.Participant{BannedUntil: &past}
	assert.False(t, expired.IsBanned(now))

	future := now.Add(time.Hour)
	banned := &types.Participant{BannedUntil: &future}
	assert.True(t, banned.IsBanned(now))
}
