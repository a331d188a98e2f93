package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
	_ "github.com/lib/pq"
)

const sampleColumns = "id, upload_mbps, download_mbps, latency_ms, packet_loss_pct, degraded, collected_at, created_at"

// PostgresSampleRepository implements repository.SampleRepository for PostgreSQL.
type PostgresSampleRepository struct {
	db *sql.DB
}

func NewPostgresSampleRepository(db *sql.DB) *PostgresSampleRepository {
	return &PostgresSampleRepository{
		db: db,
	}
}

// Save stores one sample.
func (r *PostgresSampleRepository) Save(ctx context.Context, sample *entity.Sample) error {
	model := ToSampleDBModel(sample)

	query := `
		INSERT INTO network_samples (id, upload_mbps, download_mbps, latency_ms, packet_loss_pct, degraded, collected_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		model.ID,
		model.UploadMbps,
		model.DownloadMbps,
		model.LatencyMs,
		model.PacketLossPct,
		model.Degraded,
		model.CollectedAt,
		model.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}

	return nil
}

// SaveBatch stores several samples in one transaction.
func (r *PostgresSampleRepository) SaveBatch(ctx context.Context, samples []*entity.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO network_samples (id, upload_mbps, download_mbps, latency_ms, packet_loss_pct, degraded, collected_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		model := ToSampleDBModel(sample)

		_, err = stmt.ExecContext(ctx,
			model.ID,
			model.UploadMbps,
			model.DownloadMbps,
			model.LatencyMs,
			model.PacketLossPct,
			model.Degraded,
			model.CollectedAt,
			model.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindSince returns samples collected after since, newest first.
func (r *PostgresSampleRepository) FindSince(ctx context.Context, since time.Time, limit int) ([]*entity.Sample, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM network_samples
		WHERE collected_at > $1
		ORDER BY collected_at DESC
		LIMIT $2
	`, sampleColumns)

	rows, err := r.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	return r.scanSamples(rows)
}

// FindByTimeRange returns samples collected inside the range, newest first.
func (r *PostgresSampleRepository) FindByTimeRange(ctx context.Context, timeRange valueobject.TimeRange) ([]*entity.Sample, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM network_samples
		WHERE collected_at BETWEEN $1 AND $2
		ORDER BY collected_at DESC
	`, sampleColumns)

	rows, err := r.db.QueryContext(ctx, query, timeRange.Start(), timeRange.End())
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	return r.scanSamples(rows)
}

// FindLatest returns the most recently collected sample.
func (r *PostgresSampleRepository) FindLatest(ctx context.Context) (*entity.Sample, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM network_samples
		ORDER BY collected_at DESC
		LIMIT 1
	`, sampleColumns)

	row := r.db.QueryRowContext(ctx, query)
	model, err := ScanSampleRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no samples recorded yet")
		}
		return nil, fmt.Errorf("failed to scan sample: %w", err)
	}

	return ToSampleEntity(model), nil
}

// DeleteOlderThan removes samples collected before cutoff.
func (r *PostgresSampleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM network_samples
		WHERE collected_at < $1
	`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old samples: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return rowsAffected, nil
}

// Count returns the number of stored samples.
func (r *PostgresSampleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM network_samples`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}

	return count, nil
}

func (r *PostgresSampleRepository) scanSamples(rows *sql.Rows) ([]*entity.Sample, error) {
	var samples []*entity.Sample

	for rows.Next() {
		model, err := ScanSampleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample row: %w", err)
		}
		samples = append(samples, ToSampleEntity(model))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return samples, nil
}
