package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables and indexes on startup when they do not
// exist yet. The service owns its schema; there is no separate migration
// pipeline.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS network_samples (
			id UUID PRIMARY KEY,
			upload_mbps DOUBLE PRECISION NOT NULL,
			download_mbps DOUBLE PRECISION NOT NULL,
			latency_ms DOUBLE PRECISION NOT NULL,
			packet_loss_pct DOUBLE PRECISION NOT NULL,
			degraded BOOLEAN NOT NULL DEFAULT FALSE,
			collected_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_network_samples_collected_at
			ON network_samples (collected_at DESC)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			metric_type TEXT NOT NULL,
			message TEXT NOT NULL,
			metric_value DOUBLE PRECISION NOT NULL,
			threshold_value DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			resolved BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_resolved_created_at
			ON alerts (resolved, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	return nil
}
