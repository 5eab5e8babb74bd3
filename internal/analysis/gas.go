package analysis

import (
	"log"
	"math"
	"sort"
	"time"

	"github.com/Appesteijn/stooklijn/internal/stats"
	"github.com/Appesteijn/stooklijn/internal/timeseries"
)

// GasHour is one hour of derived gas consumption. TempOutside is NaN
// when no temperature reading covers the hour.
type GasHour struct {
	Ts          time.Time
	GasM3       float64
	HeatKWh     float64
	HeatW       float64
	TempOutside float64
}

// GasDay is one day of derived gas consumption. The hot-water fields are
// NaN when the correction was not applied.
type GasDay struct {
	Date             time.Time
	GasM3            float64
	HeatKWh          float64
	AvgTempOutside   float64
	GasM3HotWater    float64
	GasM3Heating     float64
	HeatKWhHeating   float64
	TotalHeatPerHour float64
}

// ProcessGasReadings turns cumulative gas meter readings into hourly and
// daily heat output. Successive differences below zero (meter reset) or
// at or above the spike ceiling (glitch) are discarded; the first reading
// only anchors the series and contributes no consumption. With enough
// warm days the daily median warm-day usage is treated as the hot-water
// baseline and subtracted before deriving heating-only heat per hour.
func ProcessGasReadings(readings, temps []timeseries.Point, p Params) ([]GasHour, []GasDay) {
	clean := timeseries.DedupLast(readings)
	if len(clean) < 2 {
		return nil, nil
	}

	type gasEvent struct {
		ts      time.Time
		gasM3   float64
		heatKWh float64
	}

	var events []gasEvent
	for i := 1; i < len(clean); i++ {
		diff := clean[i].Value - clean[i-1].Value
		if diff < 0 || diff >= p.GasSpikeCeiling {
			continue
		}
		events = append(events, gasEvent{
			ts:      clean[i].Ts,
			gasM3:   diff,
			heatKWh: diff * p.CalorificValue * p.BoilerEfficiency,
		})
	}
	if len(events) == 0 {
		return nil, nil
	}

	// Hourly: sum of consumption, mean of the instantaneous heat rate.
	hourBuckets := make(map[time.Time]*GasHour)
	var hourRates = make(map[time.Time][]float64)
	for _, e := range events {
		hour := e.ts.Truncate(time.Hour)
		b, exists := hourBuckets[hour]
		if !exists {
			b = &GasHour{Ts: hour, TempOutside: math.NaN()}
			hourBuckets[hour] = b
		}
		b.GasM3 += e.gasM3
		b.HeatKWh += e.heatKWh
		hourRates[hour] = append(hourRates[hour], e.heatKWh*1000)
	}

	dayBuckets := make(map[time.Time]*GasDay)
	for _, e := range events {
		day := e.ts.Truncate(24 * time.Hour)
		b, exists := dayBuckets[day]
		if !exists {
			b = &GasDay{
				Date:           day,
				AvgTempOutside: math.NaN(),
				GasM3HotWater:  math.NaN(),
				GasM3Heating:   math.NaN(),
				HeatKWhHeating: math.NaN(),
			}
			dayBuckets[day] = b
		}
		b.GasM3 += e.gasM3
		b.HeatKWh += e.heatKWh
	}

	// Join temperature: hourly median, daily mean of the hourly medians.
	hourlyTemp := timeseries.Resample(temps, time.Hour, timeseries.Median)
	tempByHour := make(map[time.Time]float64, len(hourlyTemp))
	for _, t := range hourlyTemp {
		tempByHour[t.Ts] = t.Value
	}
	dailyTemp := timeseries.DailyMean(hourlyTemp)

	hourly := make([]GasHour, 0, len(hourBuckets))
	for hour, b := range hourBuckets {
		b.HeatW = stats.Mean(hourRates[hour])
		if t, ok := tempByHour[hour]; ok {
			b.TempOutside = t
		}
		hourly = append(hourly, *b)
	}
	sort.Slice(hourly, func(i, j int) bool { return hourly[i].Ts.Before(hourly[j].Ts) })

	daily := make([]GasDay, 0, len(dayBuckets))
	for day, b := range dayBuckets {
		if t, ok := dailyTemp[day]; ok {
			b.AvgTempOutside = t
		}
		daily = append(daily, *b)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date.Before(daily[j].Date) })

	applyHotWaterCorrection(daily, p)

	return hourly, daily
}

// applyHotWaterCorrection splits hot-water usage from heating usage and
// fills TotalHeatPerHour on each day. Days at or above the hot-water
// temperature threshold are assumed to carry no heating load; their
// median gas usage is the hot-water baseline.
func applyHotWaterCorrection(daily []GasDay, p Params) {
	var warmUsage []float64
	for _, d := range daily {
		if !math.IsNaN(d.AvgTempOutside) && d.AvgTempOutside >= p.HotWaterTempThreshold {
			warmUsage = append(warmUsage, d.GasM3)
		}
	}

	if len(warmUsage) < p.MinHotWaterDays {
		for i := range daily {
			daily[i].TotalHeatPerHour = daily[i].HeatKWh * 1000 / 24
		}
		return
	}

	baseline := stats.Median(warmUsage)
	log.Printf("[Gas] Hot water correction applied: %.2f m³/day baseline", baseline)

	for i := range daily {
		heatingM3 := daily[i].GasM3 - baseline
		if heatingM3 < 0 {
			heatingM3 = 0
		}
		heatingKWh := heatingM3 * p.CalorificValue * p.BoilerEfficiency
		daily[i].GasM3HotWater = baseline
		daily[i].GasM3Heating = heatingM3
		daily[i].HeatKWhHeating = heatingKWh
		daily[i].TotalHeatPerHour = heatingKWh * 1000 / 24
	}
}

// GasDailyPoints converts gas daily summaries into the shape the
// heat-loss regression consumes. Gas days carry no COP.
func GasDailyPoints(daily []GasDay) []DailyPoint {
	points := make([]DailyPoint, 0, len(daily))
	for _, d := range daily {
		points = append(points, DailyPoint{
			Date:        d.Date,
			AvgTemp:     d.AvgTempOutside,
			HeatPerHour: d.TotalHeatPerHour,
			COP:         math.NaN(),
		})
	}
	return points
}
