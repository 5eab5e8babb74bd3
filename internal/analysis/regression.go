package analysis

import (
	"math"

	"github.com/Appesteijn/stooklijn/internal/stats"
)

// heatingFit is the outcome of the shared heating regression: an OLS fit
// with residual-based outlier rejection and a refit on the cleaned set.
type heatingFit struct {
	Slope     float64
	Intercept float64
	R2        float64
	Kept      []DailyPoint // points that survived outlier rejection
}

// fitHeatingRegression fits heat demand against outdoor temperature for
// days already filtered to the heating regime. Points whose first-pass
// residual is at least OutlierSigma standard deviations out are dropped
// (anomalous high-demand days), then the line is refit. ok is false when
// fewer than MinRegressionPoints remain or the data is degenerate.
func fitHeatingRegression(points []DailyPoint, p Params) (heatingFit, bool) {
	if len(points) < p.MinRegressionPoints {
		return heatingFit{}, false
	}

	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, d := range points {
		x[i] = d.AvgTemp
		y[i] = d.HeatPerHour
	}

	slope, intercept, ok := stats.FitLine(x, y)
	if !ok {
		return heatingFit{}, false
	}

	kept := points
	resid := stats.Residuals(x, y, slope, intercept)
	if std := stats.PopStdDev(resid); std > 0 {
		clean := make([]DailyPoint, 0, len(points))
		for i, d := range points {
			if math.Abs(resid[i]) < p.OutlierSigma*std {
				clean = append(clean, d)
			}
		}
		kept = clean
	}

	if len(kept) < p.MinRegressionPoints {
		return heatingFit{}, false
	}

	if len(kept) < len(points) {
		x = make([]float64, len(kept))
		y = make([]float64, len(kept))
		for i, d := range kept {
			x[i] = d.AvgTemp
			y[i] = d.HeatPerHour
		}
		slope, intercept, ok = stats.FitLine(x, y)
		if !ok {
			return heatingFit{}, false
		}
	}

	return heatingFit{
		Slope:     slope,
		Intercept: intercept,
		R2:        stats.RSquared(x, y, slope, intercept),
		Kept:      kept,
	}, true
}

// filterHeatingDays keeps days with a finite temperature and a heat
// demand at or above the heating threshold.
func filterHeatingDays(days []DailyPoint, minWatts float64) []DailyPoint {
	var out []DailyPoint
	for _, d := range days {
		if math.IsNaN(d.AvgTemp) || math.IsNaN(d.HeatPerHour) || math.IsInf(d.HeatPerHour, 0) {
			continue
		}
		if d.HeatPerHour >= minWatts {
			out = append(out, d)
		}
	}
	return out
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
