package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrParticipantNotFound = errors.New("participant not found")

// Reputation bounds and the starting value for first-seen participants.
const (
	MinReputation     = 0
	MaxReputation     = 100
	DefaultReputation = 50
)

// Participant is the trust ledger entry for a reporter or voter.
// Reputation is only ever changed through atomic clamp-adjust updates;
// the engine never does read-modify-write on it in application code.
type Participant struct {
	ID              uuid.UUID `bun:",pk,type:uuid"      json:"id"`
	Reputation      int       `bun:",notnull"           json:"reputation"`
	ReportCount     int       `bun:",notnull,default:0" json:"reportCount"`
	ValidationCount int       `bun:",notnull,default:0" json:"validationCount"`
	StrikeCount     int       `bun:",notnull,default:0" json:"strikeCount"`
	BannedUntil     *time.Time `bun:",nullzero" json:"bannedUntil,omitempty"`
	UpdatedAt       time.Time  `bun:",notnull"  json:"updatedAt"`
}

// IsBanned reports whether the participant is currently banned.
func (p *Participant) IsBanned(now time.Time) bool {
	return p.BannedUntil != nil && now.Before(*p.BannedUntil)
}
