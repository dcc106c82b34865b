package types

import (
	"errors"
	"time"

	"github.com/crowdsift/crowdsift/internal/database/types/enum"
	"github.com/google/uuid"
)

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrInvalidKind        = errors.New("unknown report kind")
	ErrInvalidSeverity    = errors.New("severity must be between 1 and 5")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)

// Severity bounds for incident reports.
const (
	MinSeverity = 1
	MaxSeverity = 5
)

// Report is a submitted safety incident awaiting crowd validation.
// The spatial key is derived once at creation and never recomputed,
// even if coordinates are later corrected by a moderation flow.
type Report struct {
	ID          uuid.UUID       `bun:",pk,type:uuid"          json:"id"`
	Kind        enum.ReportKind `bun:",notnull"               json:"kind"`
	Severity    int             `bun:",notnull"               json:"severity"`
	Longitude   float64         `bun:",notnull"               json:"longitude"`
	Latitude    float64         `bun:",notnull"               json:"latitude"`
	SpatialKey  string          `bun:",notnull,type:varchar(12)" json:"spatialKey"`
	Description string          `bun:",type:text"             json:"description"`

	Status         enum.ReportStatus `bun:",notnull,default:'pending'" json:"status"`
	ConsensusScore float64           `bun:",notnull,default:0"         json:"consensusScore"`
	VoteCount      int               `bun:",notnull,default:0"         json:"voteCount"`

	ReporterID uuid.UUID `bun:",notnull,type:uuid" json:"reporterId"`
	// ReporterReputation is the ledger value snapshotted at submission time.
	ReporterReputation int `bun:",notnull" json:"reporterReputation"`

	// ReviewedAt marks that reputation feedback has been settled for this
	// report. Set exactly once, in the same transaction as the terminal
	// status flip.
	ReviewedAt *time.Time `bun:",nullzero" json:"reviewedAt,omitempty"`

	CreatedAt time.Time `bun:",notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:",notnull" json:"updatedAt"`
}

// ReportDetail is the caller-facing view of a report and its votes.
// Voter identities and comments are withheld.
type ReportDetail struct {
	Report *Report        `json:"report"`
	Votes  []*VoteSummary `json:"votes"`
}

// ValidateSeverity checks the severity range.
func ValidateSeverity(severity int) error {
	if severity < MinSeverity || severity > MaxSeverity {
		return ErrInvalidSeverity
	}
	return nil
}

// ValidateCoordinates checks that the pair is a usable lon/lat position.
func ValidateCoordinates(longitude, latitude float64) error {
	if longitude < -180 || longitude > 180 || latitude < -90 || latitude > 90 {
		return ErrInvalidCoordinates
	}
	return nil
}
