package analysis

import "time"

// HourlyInsight is one hour of insight data from the heat pump API.
// Missing channels are NaN, never zero.
type HourlyInsight struct {
	Ts          time.Time
	HpHeat      float64 // thermal output, W
	TempOutside float64 // outdoor temperature, °C
}

// DailyPoint is one day of usage summary: average outdoor temperature,
// average heat demand per hour (W) and average COP. Missing values are NaN.
type DailyPoint struct {
	Date        time.Time
	AvgTemp     float64
	HeatPerHour float64
	COP         float64
}

// KneePoint is the detected piecewise-linear breakpoint: the outdoor
// temperature below which the heat pump runs at maximum capacity.
type KneePoint struct {
	Temperature float64 `json:"temperature"`
	Power       float64 `json:"power"`
}

// LineFit is a plain slope/intercept pair.
type LineFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// FitQuality is a line fit with its coefficient of determination.
type FitQuality struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`
}

// OptimalFit is the daily-usage regression with its balance temperature
// (absent when the fitted slope is exactly zero).
type OptimalFit struct {
	Slope       float64  `json:"slope"`
	Intercept   float64  `json:"intercept"`
	R2          float64  `json:"r2"`
	BalanceTemp *float64 `json:"balance_temp,omitempty"`
}

// ScatterPoint is one display point of the daily heat scatter. COP is
// null when the day has no valid COP.
type ScatterPoint struct {
	Temp float64  `json:"temp"`
	Heat float64  `json:"heat"`
	COP  *float64 `json:"cop"`
}

// COPPoint is one display point of the COP-vs-temperature scatter.
type COPPoint struct {
	Temp float64 `json:"temp"`
	COP  float64 `json:"cop"`
}

// StooklijnResult carries the three independent heating-curve tracks.
// Each group is either fully populated or nil; a nil group means the
// track had insufficient data, which is a normal outcome.
type StooklijnResult struct {
	Knee           *KneePoint     `json:"knee,omitempty"`
	API            *LineFit       `json:"api,omitempty"`
	Local          *FitQuality    `json:"local,omitempty"`
	Optimal        *OptimalFit    `json:"optimal,omitempty"`
	ScatterData    []ScatterPoint `json:"scatter_data,omitempty"`
	COPScatterData []COPPoint     `json:"cop_scatter_data,omitempty"`
}

// HeatLossFit is the fitted heat-loss line. HeatLossCoefficient is the
// negated slope (W/K) and is reported unclamped.
type HeatLossFit struct {
	Slope               float64  `json:"slope"`
	Intercept           float64  `json:"intercept"`
	R2                  float64  `json:"r2"`
	HeatLossCoefficient float64  `json:"heat_loss_coefficient"`
	BalancePoint        *float64 `json:"balance_point,omitempty"`
}

// ProbePoint is the predicted demand at one probe temperature, clipped
// at zero, optionally with an interpolated COP.
type ProbePoint struct {
	Temp float64  `json:"temp"`
	Heat float64  `json:"heat"`
	COP  *float64 `json:"cop,omitempty"`
}

// HeatScatterPoint is one display point of the heat-loss scatter.
type HeatScatterPoint struct {
	Temp float64 `json:"temp"`
	Heat float64 `json:"heat"`
}

// HeatLossResult is populated as a whole or not at all.
type HeatLossResult struct {
	Fit         *HeatLossFit       `json:"fit,omitempty"`
	HeatAtTemps []ProbePoint       `json:"heat_at_temps,omitempty"`
	ScatterData []HeatScatterPoint `json:"scatter_data,omitempty"`
}
