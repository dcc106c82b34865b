package database

import (
	"github.com/crowdsift/crowdsift/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	report      *models.ReportModel
	vote        *models.VoteModel
	participant *models.ParticipantModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		report:      models.NewReport(db, logger),
		vote:        models.NewVote(db, logger),
		participant: models.NewParticipant(db, logger),
	}
}

// Report returns the report model repository.
func (r *Repository) Report() *models.ReportModel {
	return r.report
}

// Vote returns the vote model repository.
func (r *Repository) Vote() *models.VoteModel {
	return r.vote
}

// Participant returns the participant ledger repository.
func (r *Repository) Participant() *models.ParticipantModel {
	return r.participant
}
