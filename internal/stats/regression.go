package stats

import "fmt"

// FitLine performs simple linear regression (y = slope*x + intercept).
// ok is false when fewer than 2 points are given or x has zero variance;
// that is the normal "cannot fit" outcome, not an error.
//
// Mismatched slice lengths violate the calling contract and panic.
func FitLine(x, y []float64) (slope, intercept float64, ok bool) {
	if len(x) != len(y) {
		panic(fmt.Sprintf("stats: FitLine length mismatch (%d vs %d)", len(x), len(y)))
	}
	if len(x) < 2 {
		return 0, 0, false
	}

	meanX := Mean(x)
	meanY := Mean(y)

	var sumXY, sumX2 float64
	for i := 0; i < len(x); i++ {
		dx := x[i] - meanX
		sumXY += dx * (y[i] - meanY)
		sumX2 += dx * dx
	}

	if sumX2 == 0 {
		return 0, 0, false
	}

	slope = sumXY / sumX2
	intercept = meanY - slope*meanX

	return slope, intercept, true
}

// Residuals returns y[i] - (slope*x[i] + intercept) for each point.
func Residuals(x, y []float64, slope, intercept float64) []float64 {
	if len(x) != len(y) {
		panic(fmt.Sprintf("stats: Residuals length mismatch (%d vs %d)", len(x), len(y)))
	}

	resid := make([]float64, len(x))
	for i := range x {
		resid[i] = y[i] - (slope*x[i] + intercept)
	}
	return resid
}

// RSquared calculates the coefficient of determination for a fitted line.
// Returns 0 when y has zero variance (degenerate input).
func RSquared(x, y []float64, slope, intercept float64) float64 {
	if len(x) != len(y) {
		panic(fmt.Sprintf("stats: RSquared length mismatch (%d vs %d)", len(x), len(y)))
	}
	if len(y) == 0 {
		return 0
	}

	meanY := Mean(y)
	var ssRes, ssTot float64
	for i := range y {
		pred := slope*x[i] + intercept
		ssRes += (y[i] - pred) * (y[i] - pred)
		ssTot += (y[i] - meanY) * (y[i] - meanY)
	}

	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Interpolate evaluates a piecewise-linear curve through (xs, ys) at x.
// xs must be sorted ascending. Outside the range the nearest endpoint
// value is held constant.
func Interpolate(xs, ys []float64, x float64) float64 {
	if len(xs) != len(ys) {
		panic(fmt.Sprintf("stats: Interpolate length mismatch (%d vs %d)", len(xs), len(ys)))
	}
	if len(xs) == 0 {
		return 0
	}

	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}

	for i := 1; i < len(xs); i++ {
		if x <= xs[i] {
			x0, x1 := xs[i-1], xs[i]
			y0, y1 := ys[i-1], ys[i]
			if x1 == x0 {
				return y0
			}
			t := (x - x0) / (x1 - x0)
			return y0 + t*(y1-y0)
		}
	}

	return ys[len(ys)-1]
}
