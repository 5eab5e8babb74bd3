package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// makeHeatingDays builds daily points on heat = -200*temp + 4000 over
// temps [-5, 15], so the true heat-loss coefficient is 200 W/K and the
// balance point 20°C.
func makeHeatingDays(n int) []DailyPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]DailyPoint, n)
	for i := 0; i < n; i++ {
		temp := -5 + 20*float64(i)/float64(n-1)
		out[i] = DailyPoint{
			Date:        start.AddDate(0, 0, i),
			AvgTemp:     temp,
			HeatPerHour: -200*temp + 4000,
			COP:         math.NaN(),
		}
	}
	return out
}

// TestHeatLossKnownLinearData verifies exact parameter recovery
func TestHeatLossKnownLinearData(t *testing.T) {
	result := CalculateHeatLoss(makeHeatingDays(30), "heat_pump", DefaultParams())

	require.NotNil(t, result.Fit)
	require.InDelta(t, -200, result.Fit.Slope, 0.1)
	require.InDelta(t, 4000, result.Fit.Intercept, 1)
	require.InDelta(t, 1.0, result.Fit.R2, 1e-6)
	require.InDelta(t, 200, result.Fit.HeatLossCoefficient, 0.1)
	require.NotNil(t, result.Fit.BalancePoint)
	require.InDelta(t, 20.0, *result.Fit.BalancePoint, 0.1)
}

// TestHeatLossProbeTemperatures verifies predicted demand at the probe
// temperatures follows the regression line
func TestHeatLossProbeTemperatures(t *testing.T) {
	p := DefaultParams()
	result := CalculateHeatLoss(makeHeatingDays(30), "heat_pump", p)

	require.Len(t, result.HeatAtTemps, len(p.ProbeTemps))

	byTemp := make(map[float64]ProbePoint)
	for _, probe := range result.HeatAtTemps {
		byTemp[probe.Temp] = probe
	}

	require.InDelta(t, 6000, byTemp[-10].Heat, 10) // -200*(-10) + 4000
	require.InDelta(t, 4000, byTemp[0].Heat, 10)
	require.InDelta(t, 1000, byTemp[15].Heat, 10)
}

// TestHeatLossProbesClippedToZero verifies predicted demand never goes
// negative at warm probe temperatures
func TestHeatLossProbesClippedToZero(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	temps := []float64{0, 2, 4, 6, 8, 10}
	heat := []float64{2000, 1600, 1200, 800, 400, 250}
	days := make([]DailyPoint, len(temps))
	for i := range temps {
		days[i] = DailyPoint{
			Date:        start.AddDate(0, 0, i),
			AvgTemp:     temps[i],
			HeatPerHour: heat[i],
			COP:         math.NaN(),
		}
	}

	result := CalculateHeatLoss(days, "heat_pump", DefaultParams())
	require.NotNil(t, result.Fit)
	for _, probe := range result.HeatAtTemps {
		require.GreaterOrEqual(t, probe.Heat, 0.0)
	}
}

// TestHeatLossProbeCOPInterpolation verifies COP is interpolated at the
// probes with endpoint hold outside the observed temperature range
func TestHeatLossProbeCOPInterpolation(t *testing.T) {
	days := makeHeatingDays(30)
	for i := range days {
		days[i].COP = 2.5 + 0.1*days[i].AvgTemp // COP improves with temperature
	}

	result := CalculateHeatLoss(days, "heat_pump", DefaultParams())
	require.NotNil(t, result.Fit)

	byTemp := make(map[float64]ProbePoint)
	for _, probe := range result.HeatAtTemps {
		byTemp[probe.Temp] = probe
	}

	// Probes inside the range interpolate on the COP line.
	require.NotNil(t, byTemp[0].COP)
	require.InDelta(t, 2.5, *byTemp[0].COP, 0.01)

	// -10°C is colder than any observed day (-5°C): endpoint hold.
	require.NotNil(t, byTemp[-10].COP)
	require.InDelta(t, 2.5+0.1*(-5), *byTemp[-10].COP, 0.01)
}

// TestHeatLossNoCOPData verifies probes carry no COP when fewer than two
// days have one
func TestHeatLossNoCOPData(t *testing.T) {
	result := CalculateHeatLoss(makeHeatingDays(30), "heat_pump", DefaultParams())

	for _, probe := range result.HeatAtTemps {
		require.Nil(t, probe.COP)
	}
}

// TestHeatLossEmptyInput verifies nil input yields an all-absent result
func TestHeatLossEmptyInput(t *testing.T) {
	result := CalculateHeatLoss(nil, "heat_pump", DefaultParams())

	require.Nil(t, result.Fit)
	require.Empty(t, result.HeatAtTemps)
	require.Empty(t, result.ScatterData)
}

// TestHeatLossTooFewDays verifies the minimum day count
func TestHeatLossTooFewDays(t *testing.T) {
	result := CalculateHeatLoss(makeHeatingDays(30)[:3], "heat_pump", DefaultParams())
	require.Nil(t, result.Fit)
}

// TestHeatLossAllBelowHeatingThreshold verifies summer data produces no
// fit
func TestHeatLossAllBelowHeatingThreshold(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	temps := []float64{15, 18, 20, 22, 25, 28}
	heat := []float64{50, 30, 10, 5, 0, 0}
	days := make([]DailyPoint, len(temps))
	for i := range temps {
		days[i] = DailyPoint{
			Date:        start.AddDate(0, 0, i),
			AvgTemp:     temps[i],
			HeatPerHour: heat[i],
			COP:         math.NaN(),
		}
	}

	result := CalculateHeatLoss(days, "heat_pump", DefaultParams())
	require.Nil(t, result.Fit)
}

// TestHeatLossMissingValuesDropped verifies NaN and Inf rows are skipped
// without breaking the fit
func TestHeatLossMissingValuesDropped(t *testing.T) {
	days := makeHeatingDays(20)
	days[3].HeatPerHour = math.Inf(1)
	days[7].HeatPerHour = math.Inf(-1)
	days[11].AvgTemp = math.NaN()

	result := CalculateHeatLoss(days, "heat_pump", DefaultParams())
	require.NotNil(t, result.Fit)
	require.InDelta(t, -200, result.Fit.Slope, 5)
}

// TestHeatLossRobustRefitRemovesOutlier verifies a single wild day is
// rejected on residuals and the refit recovers the true line
func TestHeatLossRobustRefitRemovesOutlier(t *testing.T) {
	days := makeHeatingDays(30)
	days[15].HeatPerHour *= 10 // anomalous high-demand day

	result := CalculateHeatLoss(days, "heat_pump", DefaultParams())
	require.NotNil(t, result.Fit)
	require.InDelta(t, -200, result.Fit.Slope, 1)
	require.InDelta(t, 4000, result.Fit.Intercept, 10)
	require.Greater(t, result.Fit.R2, 0.99)

	// The outlier is gone from the scatter too.
	require.Len(t, result.ScatterData, 29)
}

// TestHeatLossScatterMatchesKeptDays verifies the scatter mirrors the
// post-rejection regression set
func TestHeatLossScatterMatchesKeptDays(t *testing.T) {
	result := CalculateHeatLoss(makeHeatingDays(30), "heat_pump", DefaultParams())

	require.Len(t, result.ScatterData, 30)
	first := result.ScatterData[0]
	require.InDelta(t, -5.0, first.Temp, 0.1)
	require.InDelta(t, 5000, first.Heat, 1)
}

// TestHeatLossSourceIsOnlyALabel verifies the source name has no effect
// on the numbers
func TestHeatLossSourceIsOnlyALabel(t *testing.T) {
	days := makeHeatingDays(30)
	r1 := CalculateHeatLoss(days, "heat_pump", DefaultParams())
	r2 := CalculateHeatLoss(days, "gas", DefaultParams())

	require.Equal(t, r1, r2)
}
