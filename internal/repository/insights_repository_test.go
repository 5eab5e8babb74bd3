package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Appesteijn/stooklijn/internal/database"
)

func testCache(t *testing.T) *InsightsRepository {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewInsightsRepository(db)
}

// TestCacheRoundTrip verifies Set/Get and the miss case
func TestCacheRoundTrip(t *testing.T) {
	cache := testCache(t)

	payload, err := cache.Get("2024-01-01")
	require.NoError(t, err)
	require.Empty(t, payload)

	require.NoError(t, cache.Set("2024-01-01", `{"totalHpHeat": 12345}`))

	payload, err = cache.Get("2024-01-01")
	require.NoError(t, err)
	require.Equal(t, `{"totalHpHeat": 12345}`, payload)
}

// TestCacheSetOverwrites verifies a re-fetch replaces the stored payload
func TestCacheSetOverwrites(t *testing.T) {
	cache := testCache(t)

	require.NoError(t, cache.Set("2024-01-01", "old"))
	require.NoError(t, cache.Set("2024-01-01", "new"))

	payload, err := cache.Get("2024-01-01")
	require.NoError(t, err)
	require.Equal(t, "new", payload)
}

// TestShouldCacheOnlyCompletedDays verifies today and the future are
// never cached
func TestShouldCacheOnlyCompletedDays(t *testing.T) {
	cache := testCache(t)
	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	require.True(t, cache.ShouldCache("2024-06-14", now))
	require.True(t, cache.ShouldCache("2023-12-31", now))
	require.False(t, cache.ShouldCache("2024-06-15", now))
	require.False(t, cache.ShouldCache("2024-06-16", now))
	require.False(t, cache.ShouldCache("not-a-date", now))
}

// TestCleanup verifies old days are removed and recent ones kept
func TestCleanup(t *testing.T) {
	cache := testCache(t)

	oldDay := time.Now().AddDate(0, 0, -400).Format("2006-01-02")
	recentDay := time.Now().AddDate(0, 0, -10).Format("2006-01-02")
	require.NoError(t, cache.Set(oldDay, "old"))
	require.NoError(t, cache.Set(recentDay, "recent"))

	removed, err := cache.Cleanup(365)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	payload, err := cache.Get(recentDay)
	require.NoError(t, err)
	require.Equal(t, "recent", payload)

	payload, err = cache.Get(oldDay)
	require.NoError(t, err)
	require.Empty(t, payload)
}

// TestStats verifies day counting and date bounds
func TestStats(t *testing.T) {
	cache := testCache(t)

	stats, err := cache.Stats()
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalDays)
	require.Empty(t, stats.OldestDate)

	require.NoError(t, cache.Set("2024-01-05", "a"))
	require.NoError(t, cache.Set("2024-01-02", "b"))
	require.NoError(t, cache.Set("2024-01-09", "c"))

	stats, err = cache.Stats()
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalDays)
	require.Equal(t, "2024-01-02", stats.OldestDate)
	require.Equal(t, "2024-01-09", stats.NewestDate)
}
