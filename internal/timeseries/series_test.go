package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	parsed, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return parsed.UTC()
}

// TestResampleMedianPerMinute verifies sub-minute samples collapse to a
// per-minute median, robust against a spike
func TestResampleMedianPerMinute(t *testing.T) {
	points := []Point{
		{Ts: ts("2024-01-01 10:00:05"), Value: 3000},
		{Ts: ts("2024-01-01 10:00:25"), Value: 3100},
		{Ts: ts("2024-01-01 10:00:45"), Value: 9999}, // spike
		{Ts: ts("2024-01-01 10:01:10"), Value: 2000},
	}

	out := Resample(points, time.Minute, Median)
	require.Len(t, out, 2)
	require.Equal(t, ts("2024-01-01 10:00:00"), out[0].Ts)
	require.Equal(t, 3100.0, out[0].Value) // median of {3000, 3100, 9999}
	require.Equal(t, 2000.0, out[1].Value)
}

// TestResampleDropsNaN verifies NaN samples never reach the aggregator
func TestResampleDropsNaN(t *testing.T) {
	points := []Point{
		{Ts: ts("2024-01-01 10:00:05"), Value: math.NaN()},
		{Ts: ts("2024-01-01 10:00:25"), Value: 42},
	}

	out := Resample(points, time.Minute, Mean)
	require.Len(t, out, 1)
	require.Equal(t, 42.0, out[0].Value)
}

// TestResampleSortsOutput verifies unordered input yields ascending output
func TestResampleSortsOutput(t *testing.T) {
	points := []Point{
		{Ts: ts("2024-01-01 12:00:00"), Value: 2},
		{Ts: ts("2024-01-01 10:00:00"), Value: 1},
		{Ts: ts("2024-01-01 11:00:00"), Value: 3},
	}

	out := Resample(points, time.Hour, Mean)
	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		require.True(t, out[i-1].Ts.Before(out[i].Ts))
	}
}

// TestResampleEmpty verifies empty input yields empty output
func TestResampleEmpty(t *testing.T) {
	require.Nil(t, Resample(nil, time.Minute, Median))
}

// TestDedupLast verifies the last occurrence of a timestamp wins
func TestDedupLast(t *testing.T) {
	points := []Point{
		{Ts: ts("2024-01-01 10:00:00"), Value: 1},
		{Ts: ts("2024-01-01 11:00:00"), Value: 2},
		{Ts: ts("2024-01-01 10:00:00"), Value: 99}, // re-fetch of the same hour
	}

	out := DedupLast(points)
	require.Len(t, out, 2)
	require.Equal(t, 99.0, out[0].Value)
	require.Equal(t, 2.0, out[1].Value)
}

// TestDedupLastEmpty verifies the empty case
func TestDedupLastEmpty(t *testing.T) {
	require.Nil(t, DedupLast(nil))
}

// TestMergeTempPowerInnerJoin verifies only shared timestamps survive
func TestMergeTempPowerInnerJoin(t *testing.T) {
	temp := []Point{
		{Ts: ts("2024-01-01 10:00:00"), Value: 5.0},
		{Ts: ts("2024-01-01 10:01:00"), Value: 5.5},
		{Ts: ts("2024-01-01 10:03:00"), Value: 6.0},
	}
	power := []Point{
		{Ts: ts("2024-01-01 10:01:00"), Value: 3000},
		{Ts: ts("2024-01-01 10:02:00"), Value: 3100},
		{Ts: ts("2024-01-01 10:03:00"), Value: 3200},
	}

	out := MergeTempPower(temp, power)
	require.Len(t, out, 2)
	require.Equal(t, 5.5, out[0].Temp)
	require.Equal(t, 3000.0, out[0].Power)
	require.Equal(t, 6.0, out[1].Temp)
	require.Equal(t, 3200.0, out[1].Power)
}

// TestMergeTempPowerEmpty verifies empty sides yield an empty join
func TestMergeTempPowerEmpty(t *testing.T) {
	require.Empty(t, MergeTempPower(nil, nil))
	require.Empty(t, MergeTempPower([]Point{{Ts: ts("2024-01-01 10:00:00"), Value: 1}}, nil))
}

// TestDailyMean verifies per-calendar-day averaging and NaN handling
func TestDailyMean(t *testing.T) {
	points := []Point{
		{Ts: ts("2024-01-01 06:00:00"), Value: 2},
		{Ts: ts("2024-01-01 18:00:00"), Value: 4},
		{Ts: ts("2024-01-02 12:00:00"), Value: 10},
		{Ts: ts("2024-01-02 13:00:00"), Value: math.NaN()},
	}

	out := DailyMean(points)
	require.Len(t, out, 2)
	require.Equal(t, 3.0, out[ts("2024-01-01 00:00:00")])
	require.Equal(t, 10.0, out[ts("2024-01-02 00:00:00")])
}
