package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/Appesteijn/stooklijn/internal/analysis"
	"github.com/Appesteijn/stooklijn/internal/repository"
	"github.com/Appesteijn/stooklijn/internal/stats"
)

// insightsDay mirrors the day payload of the heat pump insights API.
// Totals are Wh for the whole day; graphs carry one sample per hour.
type insightsDay struct {
	TotalHpHeat     float64  `json:"totalHpHeat"`
	TotalHpElectric float64  `json:"totalHpElectric"`
	TotalBoilerHeat float64  `json:"totalBoilerHeat"`
	TotalBoilerGas  float64  `json:"totalBoilerGas"`
	AverageCOP      *float64 `json:"averageCOP"`

	Graph                   []insightsGraphPoint `json:"graph"`
	OutsideTemperatureGraph []insightsTempPoint  `json:"outsideTemperatureGraph"`
}

type insightsGraphPoint struct {
	Timestamp string   `json:"timestamp"`
	HpHeat    *float64 `json:"hpHeat"`
}

type insightsTempPoint struct {
	Timestamp          string   `json:"timestamp"`
	TemperatureOutside *float64 `json:"temperatureOutside"`
}

// InsightsService fetches day payloads from the insights API, caching
// completed days so a date range is only ever fetched once.
type InsightsService struct {
	cache   *repository.InsightsRepository
	client  *http.Client
	baseURL string
}

// NewInsightsService creates a new insights service
func NewInsightsService(cache *repository.InsightsRepository, baseURL string) *InsightsService {
	return &InsightsService{
		cache:   cache,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

// FetchRange collects insights for every day in [startDate, endDate]
// (YYYY-MM-DD, inclusive) and assembles hourly rows and daily usage
// rows. A day that cannot be fetched is logged and skipped: a partial
// range is a normal outcome, not an error. Only a malformed date range
// is fatal.
func (s *InsightsService) FetchRange(startDate, endDate string) ([]analysis.HourlyInsight, []analysis.DailyPoint, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}

	var hourly []analysis.HourlyInsight
	var daily []analysis.DailyPoint

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dayStr := d.Format("2006-01-02")
		day, err := s.fetchDay(dayStr)
		if err != nil {
			log.Printf("[Insights] skipping %s: %v", dayStr, err)
			continue
		}

		hourly = append(hourly, assembleHourly(day)...)
		daily = append(daily, assembleDaily(d, day))
	}

	hourly = dedupHourly(hourly)
	fillDailyAvgTemp(daily, hourly)

	log.Printf("[Insights] assembled %d hourly rows, %d daily rows for %s..%s",
		len(hourly), len(daily), startDate, endDate)
	return hourly, daily, nil
}

// fetchDay returns the payload for one day, cache-first. Freshly fetched
// payloads are cached only when the day is already complete.
func (s *InsightsService) fetchDay(day string) (*insightsDay, error) {
	payload, err := s.cache.Get(day)
	if err != nil {
		return nil, err
	}

	if payload == "" {
		url := fmt.Sprintf("%s/insights?date=%s&timeframe=day", s.baseURL, day)
		resp, err := s.client.Get(url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch insights: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("insights API returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read insights response: %w", err)
		}
		payload = string(body)

		if s.cache.ShouldCache(day, time.Now()) {
			if err := s.cache.Set(day, payload); err != nil {
				log.Printf("[Insights] failed to cache %s: %v", day, err)
			}
		}
	}

	var parsed insightsDay
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse insights payload: %w", err)
	}
	return &parsed, nil
}

// assembleHourly joins the heat graph with the temperature graph on
// timestamp. Channels with no sample for an hour stay NaN.
func assembleHourly(day *insightsDay) []analysis.HourlyInsight {
	tempByTs := make(map[time.Time]float64, len(day.OutsideTemperatureGraph))
	for _, pt := range day.OutsideTemperatureGraph {
		ts, ok := parseTimestamp(pt.Timestamp)
		if !ok || pt.TemperatureOutside == nil {
			continue
		}
		tempByTs[ts] = *pt.TemperatureOutside
	}

	rows := make([]analysis.HourlyInsight, 0, len(day.Graph))
	for _, pt := range day.Graph {
		ts, ok := parseTimestamp(pt.Timestamp)
		if !ok {
			continue
		}
		row := analysis.HourlyInsight{
			Ts:          ts,
			HpHeat:      math.NaN(),
			TempOutside: math.NaN(),
		}
		if pt.HpHeat != nil {
			row.HpHeat = *pt.HpHeat
		}
		if temp, found := tempByTs[ts]; found {
			row.TempOutside = temp
		}
		rows = append(rows, row)
	}
	return rows
}

// assembleDaily derives the daily usage row. AvgTemp is filled in later
// from the hourly rows; COP falls back to heat/electric when the API
// does not report one, mapping a division by zero to 0.
func assembleDaily(date time.Time, day *insightsDay) analysis.DailyPoint {
	cop := math.NaN()
	if day.AverageCOP != nil {
		cop = *day.AverageCOP
	} else if day.TotalHpElectric != 0 || day.TotalHpHeat != 0 {
		cop = day.TotalHpHeat / day.TotalHpElectric
		if math.IsInf(cop, 0) {
			cop = 0
		}
	}

	return analysis.DailyPoint{
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		AvgTemp:     math.NaN(),
		HeatPerHour: (day.TotalHpHeat + day.TotalBoilerHeat) / 24,
		COP:         cop,
	}
}

// dedupHourly keeps the last row per timestamp and sorts ascending.
func dedupHourly(rows []analysis.HourlyInsight) []analysis.HourlyInsight {
	if len(rows) == 0 {
		return rows
	}
	byTs := make(map[time.Time]analysis.HourlyInsight, len(rows))
	for _, row := range rows {
		byTs[row.Ts] = row
	}
	out := make([]analysis.HourlyInsight, 0, len(byTs))
	for _, row := range byTs {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ts.Before(out[j].Ts) })
	return out
}

// fillDailyAvgTemp averages the hourly outdoor temperature per calendar
// day into the daily rows. Days without temperature samples stay NaN.
func fillDailyAvgTemp(daily []analysis.DailyPoint, hourly []analysis.HourlyInsight) {
	byDay := make(map[time.Time][]float64)
	for _, row := range hourly {
		if math.IsNaN(row.TempOutside) {
			continue
		}
		day := row.Ts.UTC().Truncate(24 * time.Hour)
		byDay[day] = append(byDay[day], row.TempOutside)
	}
	for i := range daily {
		if temps, ok := byDay[daily[i].Date]; ok && len(temps) > 0 {
			daily[i].AvgTemp = stats.Mean(temps)
		}
	}
}

// parseTimestamp accepts the timestamp formats the insights API has been
// observed to emit.
func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
	} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
