package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicateVote     = errors.New("participant already voted on this report")
	ErrSelfVote          = errors.New("reporters cannot vote on their own reports")
	ErrInvalidVoteValue  = errors.New("vote value must be -1 or +1")
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
)

// DefaultConfidence is used when a voter does not state one.
const DefaultConfidence = 0.5

// ReportVote is one participant's judgement on a report. The composite
// primary key (report_id, voter_id) is the storage-level uniqueness
// constraint that closes the duplicate-vote race.
type ReportVote struct {
	ReportID uuid.UUID `bun:",pk,type:uuid" json:"reportId"`
	VoterID  uuid.UUID `bun:",pk,type:uuid" json:"voterId"`
	// Value is +1 (confirm) or -1 (dismiss).
	Value      int     `bun:",notnull" json:"value"`
	Confidence float64 `bun:",notnull" json:"confidence"`
	// VoterReputation is the ledger value snapshotted at vote time.
	// Later ledger changes never alter this vote's weight.
	VoterReputation int       `bun:",notnull"   json:"voterReputation"`
	Comment         string    `bun:",type:text" json:"-"`
	VotedAt         time.Time `bun:",notnull"   json:"votedAt"`
}

// Weight is the vote's contribution to the consensus denominator.
func (v *ReportVote) Weight() float64 {
	return float64(v.VoterReputation) * v.Confidence
}

// VoteSummary is the anonymized view of a vote exposed to callers.
type VoteSummary struct {
	Value           int       `json:"value"`
	Confidence      float64   `json:"confidence"`
	VoterReputation int       `json:"voterReputation"`
	VotedAt         time.Time `json:"votedAt"`
}

// ValidateVote checks the vote value and confidence ranges.
func ValidateVote(value int, confidence float64) error {
	if value != -1 && value != 1 {
		return ErrInvalidVoteValue
	}
	if confidence < 0 || confidence > 1 {
		return ErrInvalidConfidence
	}
	return nil
}
