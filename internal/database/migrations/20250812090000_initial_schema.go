package migrations

import (
	"context"
	"fmt"

	"github.com/crowdsift/crowdsift/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Participant)(nil),
			(*types.Report)(nil),
			(*types.ReportVote)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table: %w", err)
			}
		}

		// The composite primary key on report_votes is created from the
		// model tags; the foreign keys are added explicitly so orphaned
		// votes cannot exist.
		constraints := []string{
			`ALTER TABLE report_votes
				ADD CONSTRAINT fk_report_votes_report
				FOREIGN KEY (report_id) REFERENCES reports (id)`,
			`ALTER TABLE report_votes
				ADD CONSTRAINT fk_report_votes_voter
				FOREIGN KEY (voter_id) REFERENCES participants (id)`,
			`ALTER TABLE reports
				ADD CONSTRAINT fk_reports_reporter
				FOREIGN KEY (reporter_id) REFERENCES participants (id)`,
			`ALTER TABLE reports
				ADD CONSTRAINT chk_reports_severity
				CHECK (severity BETWEEN 1 AND 5)`,
			`ALTER TABLE report_votes
				ADD CONSTRAINT chk_report_votes_value
				CHECK (value IN (-1, 1))`,
			`ALTER TABLE report_votes
				ADD CONSTRAINT chk_report_votes_confidence
				CHECK (confidence BETWEEN 0 AND 1)`,
			`ALTER TABLE participants
				ADD CONSTRAINT chk_participants_reputation
				CHECK (reputation BETWEEN 0 AND 100)`,
		}

		for _, constraint := range constraints {
			if _, err := db.NewRaw(constraint).Exec(ctx); err != nil {
				return fmt.Errorf("failed to add constraint: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		tables := []string{"report_votes", "reports", "participants"}
		for _, table := range tables {
			if _, err := db.NewRaw(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}

		return nil
	})
}
