package analysis

// Params holds the tunable analysis constants. Every value can be
// overridden through configuration; DefaultParams matches the behaviour
// the thresholds were calibrated against.
type Params struct {
	// MinPowerFilter is the power (W) below which the heat pump is
	// considered idle or defrosting; such samples are excluded.
	MinPowerFilter float64

	// MinHeatingWatts is the minimum average heat demand (W) for a day
	// or hour to count as a heating period in regressions.
	MinHeatingWatts float64

	// Stability filter (partial-hour / defrost rejection on hourly data).
	StabilityWindow int     // rolling stddev window, samples
	StabilityRatio  float64 // keep rows with rolling stddev < ratio * mean
	MinStablePoints int     // minimum post-threshold rows before applying

	// Knee grid search.
	KneeTempMin          float64
	KneeTempMax          float64
	KneeTempStep         float64
	KneeMinPointsPerSide int
	KneeFallbackTemp     float64 // split point used when detection fails
	KneeFlatnessRatio    float64 // cold slope must be flatter than this fraction of warm slope
	MinKneeLivePoints    int     // minimum live samples above MinPowerFilter
	MinKneeHourlyPoints  int     // minimum stable hourly rows for the fallback

	// Envelope extraction.
	EnvelopeMinPower float64
	BinSize          float64
	KeepThreshold    float64

	// Residual outlier rejection.
	OutlierSigma float64

	// Minimum points for a regression result after cleaning.
	MinRegressionPoints int

	// Gas processing.
	GasSpikeCeiling       float64 // m³ per interval; diffs at or above are meter glitches
	CalorificValue        float64 // kWh per m³
	BoilerEfficiency      float64
	HotWaterTempThreshold float64 // °C; warmer days are hot-water-only
	MinHotWaterDays       int

	// Probe temperatures (°C) for predicted heat demand.
	ProbeTemps []float64
}

// DefaultParams returns the calibrated defaults.
func DefaultParams() Params {
	return Params{
		MinPowerFilter:  2500,
		MinHeatingWatts: 200,

		StabilityWindow: 3,
		StabilityRatio:  0.20,
		MinStablePoints: 10,

		KneeTempMin:          -4.0,
		KneeTempMax:          4.0,
		KneeTempStep:         0.25,
		KneeMinPointsPerSide: 5,
		KneeFallbackTemp:     -0.5,
		KneeFlatnessRatio:    0.75,
		MinKneeLivePoints:    10,
		MinKneeHourlyPoints:  20,

		EnvelopeMinPower: 100,
		BinSize:          0.5,
		KeepThreshold:    0.90,

		OutlierSigma: 2.5,

		MinRegressionPoints: 5,

		GasSpikeCeiling:       10,
		CalorificValue:        9.77,
		BoilerEfficiency:      0.90,
		HotWaterTempThreshold: 18.0,
		MinHotWaterDays:       3,

		ProbeTemps: []float64{-10, -5, 0, 5, 10, 15},
	}
}
