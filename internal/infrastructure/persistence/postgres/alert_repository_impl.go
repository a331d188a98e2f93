package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dreschagin/netpulse/internal/domain/entity"
)

const alertColumns = "id, kind, metric_type, message, metric_value, threshold_value, created_at, resolved"

// PostgresAlertRepository implements repository.AlertRepository for PostgreSQL.
type PostgresAlertRepository struct {
	db *sql.DB
}

func NewPostgresAlertRepository(db *sql.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{
		db: db,
	}
}

// Save stores one alert.
func (r *PostgresAlertRepository) Save(ctx context.Context, alert *entity.Alert) error {
	model := ToAlertDBModel(alert)

	query := `
		INSERT INTO alerts (id, kind, metric_type, message, metric_value, threshold_value, created_at, resolved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		model.ID,
		model.Kind,
		model.MetricType,
		model.Message,
		model.MetricValue,
		model.ThresholdValue,
		model.CreatedAt,
		model.Resolved,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	return nil
}

// FindActive returns unresolved alerts from the last 24 hours, newest first.
func (r *PostgresAlertRepository) FindActive(ctx context.Context, limit int) ([]*entity.Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts
		WHERE resolved = FALSE AND created_at > $1
		ORDER BY created_at DESC
		LIMIT $2
	`, alertColumns)

	rows, err := r.db.QueryContext(ctx, query, time.Now().Add(-24*time.Hour), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query active alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*entity.Alert
	for rows.Next() {
		model, err := ScanAlertRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, ToAlertEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return alerts, nil
}

// Resolve marks the alert with the given id as resolved.
func (r *PostgresAlertRepository) Resolve(ctx context.Context, id string) error {
	query := `
		UPDATE alerts
		SET resolved = TRUE
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("alert not found: %s", id)
	}

	return nil
}

// DeleteResolvedOlderThan removes resolved alerts created before cutoff.
func (r *PostgresAlertRepository) DeleteResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM alerts
		WHERE resolved = TRUE AND created_at < $1
	`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete resolved alerts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return rowsAffected, nil
}
