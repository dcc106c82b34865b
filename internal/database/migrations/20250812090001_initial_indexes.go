package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			// Reconciler sweeps pending reports oldest-first.
			`CREATE INDEX IF NOT EXISTS idx_reports_status_updated
				ON reports (status, updated_at)`,
			// Heatmap consumers aggregate verified reports per cell.
			`CREATE INDEX IF NOT EXISTS idx_reports_spatial_key
				ON reports (spatial_key) WHERE status = 'verified'`,
			`CREATE INDEX IF NOT EXISTS idx_reports_reporter
				ON reports (reporter_id)`,
			`CREATE INDEX IF NOT EXISTS idx_report_votes_voter
				ON report_votes (voter_id)`,
		}

		for _, index := range indexes {
			if _, err := db.NewRaw(index).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"idx_reports_status_updated",
			"idx_reports_spatial_key",
			"idx_reports_reporter",
			"idx_report_votes_voter",
		}

		for _, index := range indexes {
			if _, err := db.NewRaw(fmt.Sprintf("DROP INDEX IF EXISTS %s", index)).Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop index %s: %w", index, err)
			}
		}

		return nil
	})
}
