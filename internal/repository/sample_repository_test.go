package repository

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Appesteijn/stooklijn/internal/database"
	"github.com/Appesteijn/stooklijn/internal/models"
)

func testDB(t *testing.T) *SampleRepository {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSampleRepository(db)
}

// TestInsertAndFetchRange verifies the round trip with ascending order
func TestInsertAndFetchRange(t *testing.T) {
	repo := testDB(t)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	n, err := repo.InsertSamples([]models.Sample{
		{EntityID: "sensor.power", Ts: base.Add(2 * time.Minute), Value: 3200},
		{EntityID: "sensor.power", Ts: base, Value: 3000},
		{EntityID: "sensor.power", Ts: base.Add(time.Minute), Value: 3100},
	})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	points, err := repo.FetchRange("sensor.power", base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, points, 3)
	require.Equal(t, 3000.0, points[0].Value)
	require.Equal(t, 3200.0, points[2].Value)
	require.Equal(t, base, points[0].Ts)
}

// TestInsertSamplesLastWriteWins verifies replays overwrite instead of
// duplicating
func TestInsertSamplesLastWriteWins(t *testing.T) {
	repo := testDB(t)
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.InsertSamples([]models.Sample{{EntityID: "sensor.temp", Ts: ts, Value: 5.0}})
	require.NoError(t, err)
	_, err = repo.InsertSamples([]models.Sample{{EntityID: "sensor.temp", Ts: ts, Value: 6.5}})
	require.NoError(t, err)

	count, err := repo.CountSamples("sensor.temp")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	points, err := repo.FetchRange("sensor.temp", ts, ts)
	require.NoError(t, err)
	require.Len(t, points, 1)
	require.Equal(t, 6.5, points[0].Value)
}

// TestInsertSamplesRejectsInvalid verifies non-finite values and empty
// entities are skipped, not stored as zero
func TestInsertSamplesRejectsInvalid(t *testing.T) {
	repo := testDB(t)
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	n, err := repo.InsertSamples([]models.Sample{
		{EntityID: "sensor.temp", Ts: ts, Value: math.NaN()},
		{EntityID: "sensor.temp", Ts: ts.Add(time.Minute), Value: math.Inf(1)},
		{EntityID: "", Ts: ts.Add(2 * time.Minute), Value: 1.0},
		{EntityID: "sensor.temp", Ts: ts.Add(3 * time.Minute), Value: 4.2},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	count, err := repo.CountSamples("sensor.temp")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

// TestFetchRangeBounds verifies the range is inclusive and per-entity
func TestFetchRangeBounds(t *testing.T) {
	repo := testDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.InsertSamples([]models.Sample{
		{EntityID: "sensor.a", Ts: base, Value: 1},
		{EntityID: "sensor.a", Ts: base.Add(time.Hour), Value: 2},
		{EntityID: "sensor.a", Ts: base.Add(2 * time.Hour), Value: 3},
		{EntityID: "sensor.b", Ts: base.Add(time.Hour), Value: 99},
	})
	require.NoError(t, err)

	points, err := repo.FetchRange("sensor.a", base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, points, 2)

	points, err = repo.FetchRange("sensor.missing", base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Empty(t, points)
}
