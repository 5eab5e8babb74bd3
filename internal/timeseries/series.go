package timeseries

import (
	"math"
	"sort"
	"time"

	"github.com/Appesteijn/stooklijn/internal/stats"
)

// Point is a single timestamped sensor reading.
type Point struct {
	Ts    time.Time `json:"ts"`
	Value float64   `json:"value"`
}

// TempPower is one aligned temperature/power observation.
type TempPower struct {
	Ts    time.Time
	Temp  float64
	Power float64
}

// Aggregator summarizes the values that fall into one resample bucket.
type Aggregator func(values []float64) float64

// Common aggregators. Median is used when summarizing sub-samples of the
// same quantity (robust against spikes); Mean when averaging a derived
// quantity over a longer window; Sum for consumption totals.
var (
	Median Aggregator = stats.Median
	Mean   Aggregator = stats.Mean
	Sum    Aggregator = stats.Sum
)

// Resample floors each timestamp to the given step and aggregates all
// values that share a bucket. NaN values are dropped. Output is sorted
// ascending with no duplicate timestamps; empty input yields empty output.
func Resample(points []Point, step time.Duration, agg Aggregator) []Point {
	if len(points) == 0 {
		return nil
	}

	buckets := make(map[time.Time][]float64)
	for _, p := range points {
		if math.IsNaN(p.Value) {
			continue
		}
		ts := p.Ts.Truncate(step)
		buckets[ts] = append(buckets[ts], p.Value)
	}

	out := make([]Point, 0, len(buckets))
	for ts, values := range buckets {
		out = append(out, Point{Ts: ts, Value: agg(values)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Ts.Before(out[j].Ts) })
	return out
}

// DedupLast sorts points ascending and keeps the last occurrence of each
// timestamp (later writes win, matching multi-day fetch concatenation).
func DedupLast(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ts.Before(sorted[j].Ts) })

	out := make([]Point, 0, len(sorted))
	for _, p := range sorted {
		if len(out) > 0 && out[len(out)-1].Ts.Equal(p.Ts) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

// MergeTempPower inner-joins two series on timestamp. Both inputs must be
// sorted ascending without duplicates (the Resample output contract).
func MergeTempPower(temp, power []Point) []TempPower {
	var out []TempPower
	i, j := 0, 0
	for i < len(temp) && j < len(power) {
		switch {
		case temp[i].Ts.Before(power[j].Ts):
			i++
		case power[j].Ts.Before(temp[i].Ts):
			j++
		default:
			out = append(out, TempPower{Ts: temp[i].Ts, Temp: temp[i].Value, Power: power[j].Value})
			i++
			j++
		}
	}
	return out
}

// DailyMean averages points per calendar day (UTC). Used for deriving a
// daily average temperature from finer-grained values.
func DailyMean(points []Point) map[time.Time]float64 {
	buckets := make(map[time.Time][]float64)
	for _, p := range points {
		if math.IsNaN(p.Value) {
			continue
		}
		day := p.Ts.Truncate(24 * time.Hour)
		buckets[day] = append(buckets[day], p.Value)
	}

	out := make(map[time.Time]float64, len(buckets))
	for day, values := range buckets {
		out[day] = stats.Mean(values)
	}
	return out
}
