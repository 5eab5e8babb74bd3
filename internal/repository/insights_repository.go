package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// CacheStats summarizes the state of the insights cache.
type CacheStats struct {
	TotalDays  int    `json:"total_days"`
	OldestDate string `json:"oldest_date,omitempty"`
	NewestDate string `json:"newest_date,omitempty"`
}

// InsightsRepository is the day-keyed cache of insights API payloads.
// Constructed explicitly and passed into the fetch layer; there is no
// package-level instance.
type InsightsRepository struct {
	db *sql.DB
}

// NewInsightsRepository creates a new insights cache repository
func NewInsightsRepository(db *sql.DB) *InsightsRepository {
	return &InsightsRepository{db: db}
}

// Get returns the cached payload for a day (YYYY-MM-DD), or "" when the
// day is not cached.
func (r *InsightsRepository) Get(day string) (string, error) {
	var payload string
	err := r.db.QueryRow(`SELECT payload FROM insights_cache WHERE day = ?`, day).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read insights cache: %w", err)
	}
	return payload, nil
}

// Set stores the payload for a day, replacing any previous entry.
func (r *InsightsRepository) Set(day, payload string) error {
	_, err := r.db.Exec(
		`INSERT INTO insights_cache (day, payload, fetched_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(day) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		day, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to write insights cache: %w", err)
	}
	return nil
}

// ShouldCache reports whether a day is complete and therefore safe to
// cache. Today's data can still change, so only past days qualify.
func (r *InsightsRepository) ShouldCache(day string, now time.Time) bool {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		return false
	}
	return d.Before(now.Truncate(24 * time.Hour))
}

// Cleanup removes entries older than daysToKeep and returns how many
// were deleted.
func (r *InsightsRepository) Cleanup(daysToKeep int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -daysToKeep).Format("2006-01-02")
	res, err := r.db.Exec(`DELETE FROM insights_cache WHERE day < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean insights cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Stats returns cache statistics.
func (r *InsightsRepository) Stats() (*CacheStats, error) {
	stats := &CacheStats{}

	var oldest, newest sql.NullString
	err := r.db.QueryRow(`SELECT COUNT(*), MIN(day), MAX(day) FROM insights_cache`).
		Scan(&stats.TotalDays, &oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache stats: %w", err)
	}

	if oldest.Valid {
		stats.OldestDate = oldest.String
	}
	if newest.Valid {
		stats.NewestDate = newest.String
	}
	return stats, nil
}
