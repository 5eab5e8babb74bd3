package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Appesteijn/stooklijn/internal/analysis"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Insights API
	InsightsBaseURL string
	QuattStartDate  string // YYYY-MM-DD
	QuattEndDate    string // YYYY-MM-DD

	// Recorder entities
	TempEntities []string // priority order
	PowerEntity  string
	DaysHistory  int

	// Gas analysis
	GasEnabled   bool
	GasEntity    string
	GasStartDate string
	GasEndDate   string

	// Currently configured heating curve, as two (temp, power) points.
	ActualStooklijnTemp1  *float64
	ActualStooklijnPower1 *float64
	ActualStooklijnTemp2  *float64
	ActualStooklijnPower2 *float64

	Analysis analysis.Params
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	params := analysis.DefaultParams()
	params.MinPowerFilter = envFloat("MIN_POWER_FILTER", params.MinPowerFilter)
	params.MinHeatingWatts = envFloat("MIN_HEATING_WATTS", params.MinHeatingWatts)
	params.BinSize = envFloat("ENVELOPE_BIN_SIZE", params.BinSize)
	params.KeepThreshold = envFloat("ENVELOPE_KEEP_THRESHOLD", params.KeepThreshold)
	params.OutlierSigma = envFloat("OUTLIER_SIGMA", params.OutlierSigma)
	params.KneeTempMin = envFloat("KNEE_TEMP_MIN", params.KneeTempMin)
	params.KneeTempMax = envFloat("KNEE_TEMP_MAX", params.KneeTempMax)
	params.KneeTempStep = envFloat("KNEE_TEMP_STEP", params.KneeTempStep)
	params.KneeMinPointsPerSide = envInt("KNEE_MIN_POINTS_PER_SIDE", params.KneeMinPointsPerSide)
	params.CalorificValue = envFloat("GAS_CALORIFIC_VALUE", params.CalorificValue)
	params.BoilerEfficiency = envFloat("BOILER_EFFICIENCY", params.BoilerEfficiency)
	params.HotWaterTempThreshold = envFloat("HOT_WATER_TEMP_THRESHOLD", params.HotWaterTempThreshold)

	today := time.Now().Format("2006-01-02")
	monthAgo := time.Now().AddDate(0, 0, -30).Format("2006-01-02")

	return &Config{
		Port:      envString("PORT", ":8080"),
		DBPath:    envString("DB_PATH", "./data/stooklijn/stooklijn.db"),
		JWTSecret: envString("JWT_SECRET", "your-secret-key-change-in-production"),

		InsightsBaseURL: envString("INSIGHTS_BASE_URL", "http://localhost:8086"),
		QuattStartDate:  envString("QUATT_START_DATE", monthAgo),
		QuattEndDate:    envString("QUATT_END_DATE", today),

		TempEntities: envList("TEMP_ENTITIES", []string{
			"sensor.heatpump_hp1_temperature_outside",
			"sensor.heatpump_hp2_temperature_outside",
			"sensor.thermostat_temperature_outside",
		}),
		PowerEntity: envString("POWER_ENTITY", "sensor.heatpump_total_power"),
		DaysHistory: envInt("DAYS_HISTORY", 30),

		GasEnabled:   envBool("GAS_ENABLED", false),
		GasEntity:    envString("GAS_ENTITY", "sensor.gas_meter"),
		GasStartDate: envString("GAS_START_DATE", monthAgo),
		GasEndDate:   envString("GAS_END_DATE", today),

		ActualStooklijnTemp1:  envOptFloat("ACTUAL_STOOKLIJN_TEMP1"),
		ActualStooklijnPower1: envOptFloat("ACTUAL_STOOKLIJN_POWER1"),
		ActualStooklijnTemp2:  envOptFloat("ACTUAL_STOOKLIJN_TEMP2"),
		ActualStooklijnPower2: envOptFloat("ACTUAL_STOOKLIJN_POWER2"),

		Analysis: params,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envOptFloat(key string) *float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
