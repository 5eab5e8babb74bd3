package analysis

import (
	"log"
	"math"
	"sort"

	"github.com/Appesteijn/stooklijn/internal/stats"
)

// CalculateHeatLoss derives the building's heat-loss characteristics from
// daily usage data: heat demand regressed against average outdoor
// temperature over heating days, with residual-based outlier rejection.
// The result is populated as a whole or returned empty; too little data
// is a normal outcome, never an error.
func CalculateHeatLoss(days []DailyPoint, source string, p Params) HeatLossResult {
	var result HeatLossResult

	heating := filterHeatingDays(days, p.MinHeatingWatts)
	fit, ok := fitHeatingRegression(heating, p)
	if !ok {
		log.Printf("[HeatLoss] Insufficient data for %s (%d heating days)", source, len(heating))
		return result
	}

	hlFit := &HeatLossFit{
		Slope:               fit.Slope,
		Intercept:           fit.Intercept,
		R2:                  fit.R2,
		HeatLossCoefficient: -fit.Slope,
	}
	if fit.Slope != 0 {
		balance := -fit.Intercept / fit.Slope
		hlFit.BalancePoint = &balance
	}

	copTemps, copValues := copSeries(days)

	probes := make([]ProbePoint, 0, len(p.ProbeTemps))
	for _, t := range p.ProbeTemps {
		demand := fit.Slope*t + fit.Intercept
		if demand < 0 {
			demand = 0
		}
		probe := ProbePoint{Temp: t, Heat: demand}
		if len(copTemps) >= 2 {
			cop := stats.Interpolate(copTemps, copValues, t)
			probe.COP = &cop
		}
		probes = append(probes, probe)
	}

	scatter := make([]HeatScatterPoint, 0, len(fit.Kept))
	for _, d := range fit.Kept {
		scatter = append(scatter, HeatScatterPoint{
			Temp: round(d.AvgTemp, 1),
			Heat: round(d.HeatPerHour, 0),
		})
	}

	result.Fit = hlFit
	result.HeatAtTemps = probes
	result.ScatterData = scatter

	log.Printf("[HeatLoss] %s: %.1f W/K, balance %.1f°C, R²=%.3f (%d days)",
		source, hlFit.HeatLossCoefficient, -fit.Intercept/nonZero(fit.Slope), fit.R2, len(fit.Kept))

	return result
}

// copSeries collects (temperature, COP) pairs sorted by temperature for
// interpolation at the probe temperatures.
func copSeries(days []DailyPoint) (temps, cops []float64) {
	type pair struct{ t, c float64 }
	var pairs []pair
	for _, d := range days {
		if math.IsNaN(d.AvgTemp) || math.IsNaN(d.COP) || math.IsInf(d.COP, 0) || d.COP <= 0 {
			continue
		}
		pairs = append(pairs, pair{d.AvgTemp, d.COP})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].t < pairs[j].t })
	for _, p := range pairs {
		temps = append(temps, p.t)
		cops = append(cops, p.c)
	}
	return temps, cops
}

func nonZero(v float64) float64 {
	if v == 0 {
		return math.Inf(1)
	}
	return v
}
