package repository

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/Appesteijn/stooklijn/internal/models"
	"github.com/Appesteijn/stooklijn/internal/timeseries"
)

// SampleRepository handles database operations for raw sensor samples
// (the recorder).
type SampleRepository struct {
	db *sql.DB
}

// NewSampleRepository creates a new sample repository
func NewSampleRepository(db *sql.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// InsertSamples stores samples, replacing any existing reading for the
// same entity and timestamp (last write wins). Non-finite values are
// skipped: a missing reading stays missing, never zero.
func (r *SampleRepository) InsertSamples(samples []models.Sample) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO samples (entity_id, ts, value) VALUES (?, ?, ?)
		ON CONFLICT(entity_id, ts) DO UPDATE SET value = excluded.value`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, s := range samples {
		if s.EntityID == "" || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			continue
		}
		if _, err := stmt.Exec(s.EntityID, s.Ts.UTC().Unix(), s.Value); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert sample: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit samples: %w", err)
	}
	return inserted, nil
}

// FetchRange returns all samples for an entity within [from, to],
// ordered ascending by timestamp.
func (r *SampleRepository) FetchRange(entityID string, from, to time.Time) ([]timeseries.Point, error) {
	rows, err := r.db.Query(
		`SELECT ts, value FROM samples WHERE entity_id = ? AND ts >= ? AND ts <= ? ORDER BY ts`,
		entityID, from.UTC().Unix(), to.UTC().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var points []timeseries.Point
	for rows.Next() {
		var ts int64
		var value float64
		if err := rows.Scan(&ts, &value); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		points = append(points, timeseries.Point{Ts: time.Unix(ts, 0).UTC(), Value: value})
	}

	return points, rows.Err()
}

// CountSamples returns the number of stored samples for an entity.
func (r *SampleRepository) CountSamples(entityID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM samples WHERE entity_id = ?`, entityID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return count, nil
}
