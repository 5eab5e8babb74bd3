package analysis

import (
	"log"
	"math"

	"github.com/Appesteijn/stooklijn/internal/stats"
	"github.com/Appesteijn/stooklijn/internal/timeseries"
)

// filterStableRows keeps hours where the heat pump ran continuously.
// Rows below MinPowerFilter are dropped, then rows whose centered rolling
// power stddev exceeds StabilityRatio of the mean power are dropped too
// (partial hours and defrost-contaminated hours). The stability step only
// applies once at least MinStablePoints rows pass the power threshold.
func filterStableRows(rows []HourlyInsight, p Params) []HourlyInsight {
	var filtered []HourlyInsight
	for _, r := range rows {
		if math.IsNaN(r.HpHeat) || r.HpHeat < p.MinPowerFilter {
			continue
		}
		filtered = append(filtered, r)
	}

	if len(filtered) < p.MinStablePoints {
		return filtered
	}

	powers := make([]float64, len(filtered))
	for i, r := range filtered {
		powers[i] = r.HpHeat
	}

	rolling := stats.RollingStdDev(powers, p.StabilityWindow)
	threshold := stats.Mean(powers) * p.StabilityRatio

	var stable []HourlyInsight
	for i, r := range filtered {
		if rolling[i] < threshold {
			stable = append(stable, r)
		}
	}

	log.Printf("[Stooklijn] Filtered stable hours: %d -> %d (removed %d unstable)",
		len(filtered), len(stable), len(filtered)-len(stable))

	return stable
}

// findKneeByGridSearch finds the knee temperature by evaluating every
// candidate split on a fixed grid and picking the one with the lowest
// total residual. Every candidate is scored, so unlike iterative curve
// fitting there is no local-minimum sensitivity.
//
// Physical constraints:
//  1. the warm-side slope must be negative (power falls as temperature
//     rises above the knee);
//  2. the cold side must be markedly flatter than the warm side — if both
//     sides have similar slopes the data is a straight line, not a knee.
//
// Returns nil when no candidate survives; that is a normal outcome.
func findKneeByGridSearch(x, y []float64, p Params) *KneePoint {
	var best *KneePoint
	bestMSE := math.Inf(1)

	for t := p.KneeTempMin; t <= p.KneeTempMax+p.KneeTempStep/2; t += p.KneeTempStep {
		var xl, yl, xr, yr []float64
		for i := range x {
			if x[i] < t {
				xl = append(xl, x[i])
				yl = append(yl, y[i])
			} else {
				xr = append(xr, x[i])
				yr = append(yr, y[i])
			}
		}

		if len(xl) < p.KneeMinPointsPerSide || len(xr) < p.KneeMinPointsPerSide {
			continue
		}

		slopeL, interceptL, okL := stats.FitLine(xl, yl)
		slopeR, interceptR, okR := stats.FitLine(xr, yr)
		if !okL || !okR {
			continue
		}

		if slopeR >= 0 {
			continue
		}

		// A cold side steeper than KneeFlatnessRatio of the warm side is
		// a gradual slope, not a capacity plateau.
		if slopeL < 0 && math.Abs(slopeL) > math.Abs(slopeR)*p.KneeFlatnessRatio {
			continue
		}

		// Normalize by the total point count so a tiny, trivially
		// well-fit segment cannot win by being small.
		var ss float64
		for _, r := range stats.Residuals(xl, yl, slopeL, interceptL) {
			ss += r * r
		}
		for _, r := range stats.Residuals(xr, yr, slopeR, interceptR) {
			ss += r * r
		}
		mse := ss / float64(len(xl)+len(xr))

		if mse < bestMSE {
			bestMSE = mse
			power := (slopeL*t + interceptL + slopeR*t + interceptR) / 2
			best = &KneePoint{Temperature: t, Power: power}
		}
	}

	return best
}

// detectKneeHourly runs knee detection on insight hourly data. Hourly
// averages dilute cold-side power with defrost cycles, so the stable-hour
// filter is applied first and more points are required than for
// minute-level data.
func detectKneeHourly(rows []HourlyInsight, p Params) *KneePoint {
	var valid []HourlyInsight
	for _, r := range rows {
		if math.IsNaN(r.HpHeat) || math.IsNaN(r.TempOutside) {
			continue
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return nil
	}

	stable := filterStableRows(valid, p)
	if len(stable) < p.MinKneeHourlyPoints {
		log.Printf("[Stooklijn] Not enough stable hours for knee detection (%d < %d)",
			len(stable), p.MinKneeHourlyPoints)
		return nil
	}

	x := make([]float64, len(stable))
	y := make([]float64, len(stable))
	for i, r := range stable {
		x[i] = r.TempOutside
		y[i] = r.HpHeat
	}

	knee := findKneeByGridSearch(x, y, p)
	if knee == nil {
		log.Printf("[Stooklijn] Grid search found no valid knee in [%.1f, %.1f]°C (%d stable hours)",
			p.KneeTempMin, p.KneeTempMax, len(stable))
		return nil
	}

	log.Printf("[Stooklijn] Knee detected (hourly): %.2f°C, %.0f W (from %d stable hours)",
		knee.Temperature, knee.Power, len(stable))
	return knee
}

// activePoints keeps live samples at or above the minimum power filter.
func activePoints(live []timeseries.TempPower, minPower float64) []timeseries.TempPower {
	var out []timeseries.TempPower
	for _, s := range live {
		if math.IsNaN(s.Temp) || math.IsNaN(s.Power) {
			continue
		}
		if s.Power >= minPower {
			out = append(out, s)
		}
	}
	return out
}

// extractEnvelope isolates near-maximum cold-side points: rough outlier
// rejection against a single OLS pass, then per-temperature-bin retention
// of points within KeepThreshold of the bin maximum. Modulated and
// partial-load points fall away, leaving peak-capacity behaviour.
func extractEnvelope(rows []HourlyInsight, splitTemp float64, p Params) []HourlyInsight {
	var cold []HourlyInsight
	for _, r := range rows {
		if math.IsNaN(r.HpHeat) || math.IsNaN(r.TempOutside) {
			continue
		}
		if r.HpHeat > p.EnvelopeMinPower && r.TempOutside < splitTemp {
			cold = append(cold, r)
		}
	}

	if len(cold) <= p.MinRegressionPoints {
		return nil
	}

	x := make([]float64, len(cold))
	y := make([]float64, len(cold))
	for i, r := range cold {
		x[i] = r.TempOutside
		y[i] = r.HpHeat
	}

	clean := cold
	if slope, intercept, ok := stats.FitLine(x, y); ok {
		resid := stats.Residuals(x, y, slope, intercept)
		if std := stats.PopStdDev(resid); std > 0 {
			clean = nil
			for i, r := range cold {
				if math.Abs(resid[i]) < p.OutlierSigma*std {
					clean = append(clean, r)
				}
			}
		}
	}

	// Bin to the nearest bin center and keep near-maximum points per bin.
	maxInBin := make(map[float64]float64)
	for _, r := range clean {
		bin := math.Round(r.TempOutside/p.BinSize) * p.BinSize
		if r.HpHeat > maxInBin[bin] {
			maxInBin[bin] = r.HpHeat
		}
	}

	var envelope []HourlyInsight
	for _, r := range clean {
		bin := math.Round(r.TempOutside/p.BinSize) * p.BinSize
		if r.HpHeat >= maxInBin[bin]*p.KeepThreshold {
			envelope = append(envelope, r)
		}
	}
	return envelope
}

// CalculateStooklijn runs the full heating-curve analysis over three
// independently sourced inputs: minute-level live history (temperature +
// power), hourly insight data spanning months, and daily usage summaries.
// Each track fails independently; a nil group in the result means that
// track had insufficient data.
func CalculateStooklijn(live []timeseries.TempPower, hourly []HourlyInsight, daily []DailyPoint, p Params) StooklijnResult {
	var result StooklijnResult
	splitTemp := p.KneeFallbackTemp

	// Knee detection: minute-level data first (no defrost dilution),
	// hourly insight data as the longer-history fallback.
	active := activePoints(live, p.MinPowerFilter)
	if len(active) > p.MinKneeLivePoints {
		x := make([]float64, len(active))
		y := make([]float64, len(active))
		for i, s := range active {
			x[i] = s.Temp
			y[i] = s.Power
		}

		if knee := findKneeByGridSearch(x, y, p); knee != nil {
			result.Knee = knee
			splitTemp = knee.Temperature
			log.Printf("[Stooklijn] Knee detected (live): %.2f°C, %.0f W (%d active points)",
				knee.Temperature, knee.Power, len(active))
		} else {
			log.Printf("[Stooklijn] Live knee detection found no valid knee (%d active points), trying hourly data",
				len(active))
		}
	}

	if result.Knee == nil && len(hourly) > 0 {
		if knee := detectKneeHourly(hourly, p); knee != nil {
			result.Knee = knee
			splitTemp = knee.Temperature
		}
	}

	if result.Knee == nil {
		log.Printf("[Stooklijn] Knee detection failed on both sources, using fallback split %.2f°C",
			p.KneeFallbackTemp)
	}

	// Warm-side slope from live data at or above the split temperature.
	var xr, yr []float64
	for _, s := range active {
		if s.Temp >= splitTemp {
			xr = append(xr, s.Temp)
			yr = append(yr, s.Power)
		}
	}
	if len(xr) > 1 {
		if slope, intercept, ok := stats.FitLine(xr, yr); ok {
			result.API = &LineFit{Slope: slope, Intercept: intercept}
			log.Printf("[Stooklijn] Warm-side curve from live data: slope=%.1f W/°C, intercept=%.0f W (%d points)",
				slope, intercept, len(xr))
		}
	}

	// Freezing performance from the cold-side max envelope.
	if envelope := extractEnvelope(hourly, splitTemp, p); len(envelope) > 1 {
		x := make([]float64, len(envelope))
		y := make([]float64, len(envelope))
		for i, r := range envelope {
			x[i] = r.TempOutside
			y[i] = r.HpHeat
		}
		if slope, intercept, ok := stats.FitLine(x, y); ok {
			result.Local = &FitQuality{
				Slope:     slope,
				Intercept: intercept,
				R2:        stats.RSquared(x, y, slope, intercept),
			}
		}
	}

	// Optimal curve from the daily usage pattern.
	heating := filterHeatingDays(daily, p.MinHeatingWatts)
	if fit, ok := fitHeatingRegression(heating, p); ok {
		optimal := &OptimalFit{Slope: fit.Slope, Intercept: fit.Intercept, R2: fit.R2}
		if fit.Slope != 0 {
			balance := -fit.Intercept / fit.Slope
			optimal.BalanceTemp = &balance
		}
		result.Optimal = optimal

		scatter := make([]ScatterPoint, 0, len(heating))
		for _, d := range heating {
			pt := ScatterPoint{Temp: round(d.AvgTemp, 1), Heat: round(d.HeatPerHour, 0)}
			if !math.IsNaN(d.COP) && !math.IsInf(d.COP, 0) {
				cop := d.COP
				pt.COP = &cop
			}
			scatter = append(scatter, pt)
		}
		result.ScatterData = scatter
	}

	// COP scatter over heating days with a meaningful COP.
	var copScatter []COPPoint
	for _, d := range heating {
		if math.IsNaN(d.COP) || math.IsInf(d.COP, 0) || d.COP <= 0 {
			continue
		}
		copScatter = append(copScatter, COPPoint{Temp: round(d.AvgTemp, 1), COP: round(d.COP, 2)})
	}
	result.COPScatterData = copScatter

	return result
}
