package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFitLineRecoversParameters verifies exact recovery on noiseless data
func TestFitLineRecoversParameters(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = -200*v + 4000
	}

	slope, intercept, ok := FitLine(x, y)
	require.True(t, ok)
	require.InDelta(t, -200, slope, 1e-9)
	require.InDelta(t, 4000, intercept, 1e-9)
}

// TestFitLineTooFewPoints verifies ok=false below two points
func TestFitLineTooFewPoints(t *testing.T) {
	_, _, ok := FitLine([]float64{1}, []float64{2})
	require.False(t, ok)

	_, _, ok = FitLine(nil, nil)
	require.False(t, ok)
}

// TestFitLineZeroVariance verifies a vertical point cloud cannot be fit
func TestFitLineZeroVariance(t *testing.T) {
	_, _, ok := FitLine([]float64{3, 3, 3}, []float64{1, 2, 3})
	require.False(t, ok)
}

// TestFitLineLengthMismatchPanics verifies the contract violation panics
func TestFitLineLengthMismatchPanics(t *testing.T) {
	require.Panics(t, func() {
		FitLine([]float64{1, 2}, []float64{1})
	})
}

// TestResiduals verifies residuals against a known line
func TestResiduals(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{10, 22, 28}
	resid := Residuals(x, y, 10, 10)
	require.InDeltaSlice(t, []float64{0, 2, -2}, resid, 1e-12)
}

// TestRSquaredPerfectFit verifies R² is 1 on noiseless data
func TestRSquaredPerfectFit(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{5, 7, 9, 11}
	require.InDelta(t, 1.0, RSquared(x, y, 2, 5), 1e-12)
}

// TestRSquaredDegenerate verifies constant y yields 0, not NaN
func TestRSquaredDegenerate(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{4, 4, 4}
	require.Equal(t, 0.0, RSquared(x, y, 0, 4))
	require.Equal(t, 0.0, RSquared(nil, nil, 1, 0))
}

// TestInterpolateMidpoint verifies linear interpolation between knots
func TestInterpolateMidpoint(t *testing.T) {
	xs := []float64{0, 10}
	ys := []float64{100, 200}
	require.InDelta(t, 150, Interpolate(xs, ys, 5), 1e-12)
	require.InDelta(t, 110, Interpolate(xs, ys, 1), 1e-12)
}

// TestInterpolateEndpointHold verifies values outside the range hold the
// nearest endpoint instead of extrapolating
func TestInterpolateEndpointHold(t *testing.T) {
	xs := []float64{-5, 0, 10}
	ys := []float64{2.0, 3.0, 4.5}

	require.Equal(t, 2.0, Interpolate(xs, ys, -20))
	require.Equal(t, 4.5, Interpolate(xs, ys, 30))
}

// TestInterpolateSinglePoint verifies one knot behaves as a constant
func TestInterpolateSinglePoint(t *testing.T) {
	require.Equal(t, 7.0, Interpolate([]float64{3}, []float64{7}, -100))
	require.Equal(t, 7.0, Interpolate([]float64{3}, []float64{7}, 100))
}
