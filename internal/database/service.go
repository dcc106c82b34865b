package database

import (
	"github.com/crowdsift/crowdsift/internal/database/service"
	"github.com/crowdsift/crowdsift/internal/events"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	report      *service.ReportService
	participant *service.ParticipantService
}

// NewService creates a new service instance with all services.
func NewService(db *bun.DB, repository *Repository, emitter *events.Emitter, logger *zap.Logger) *Service {
	participantService := service.NewParticipant(db, repository.Participant(), logger)

	return &Service{
		report: service.NewReport(
			db,
			repository.Report(),
			repository.Vote(),
			repository.Participant(),
			participantService,
			emitter,
			logger,
		),
		participant: participantService,
	}
}

// Report returns the report service.
func (s *Service) Report() *service.ReportService {
	return s.report
}

// Participant returns the participant service.
func (s *Service) Participant() *service.ParticipantService {
	return s.participant
}
