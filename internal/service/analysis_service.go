package service

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/Appesteijn/stooklijn/internal/analysis"
	"github.com/Appesteijn/stooklijn/internal/config"
	"github.com/Appesteijn/stooklijn/internal/models"
	"github.com/Appesteijn/stooklijn/internal/repository"
	"github.com/Appesteijn/stooklijn/internal/stats"
	"github.com/Appesteijn/stooklijn/internal/timeseries"
)

// AnalysisService runs the full analysis pipeline. Runs execute in the
// background; callers poll the run record for status and result.
type AnalysisService struct {
	cfg      *config.Config
	runs     *repository.RunRepository
	samples  *repository.SampleRepository
	insights *InsightsService
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(cfg *config.Config, runs *repository.RunRepository, samples *repository.SampleRepository, insights *InsightsService) *AnalysisService {
	return &AnalysisService{
		cfg:      cfg,
		runs:     runs,
		samples:  samples,
		insights: insights,
	}
}

// StartRun creates a pending run and kicks off the pipeline in the
// background. The returned run carries the id to poll.
func (s *AnalysisService) StartRun() (*models.AnalysisRun, error) {
	id, err := s.runs.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis run: %w", err)
	}

	go s.execute(id)

	return s.runs.Get(id)
}

// GetRun retrieves a run by id.
func (s *AnalysisService) GetRun(id int64) (*models.AnalysisRun, error) {
	return s.runs.Get(id)
}

// LatestResult returns the most recently completed run, or nil when no
// run has completed yet.
func (s *AnalysisService) LatestResult() (*models.AnalysisRun, error) {
	return s.runs.Latest()
}

// execute runs the pipeline for one run record. Missing data never fails
// a run; only infrastructure errors do.
func (s *AnalysisService) execute(id int64) {
	log.Printf("[Analysis] run %d starting", id)

	if err := s.runs.MarkRunning(id); err != nil {
		log.Printf("[Analysis] run %d: failed to mark running: %v", id, err)
		return
	}

	result, err := s.runPipeline()
	if err != nil {
		log.Printf("[Analysis] run %d failed: %v", id, err)
		if markErr := s.runs.MarkFailed(id, err.Error()); markErr != nil {
			log.Printf("[Analysis] run %d: failed to mark failed: %v", id, markErr)
		}
		return
	}

	if err := s.runs.MarkCompleted(id, result); err != nil {
		log.Printf("[Analysis] run %d: failed to persist result: %v", id, err)
		return
	}
	log.Printf("[Analysis] run %d completed", id)
}

func (s *AnalysisService) runPipeline() (*models.AnalysisResult, error) {
	p := s.cfg.Analysis

	// Insights: hourly rows and daily usage rows for the configured range.
	hourly, daily, err := s.insights.FetchRange(s.cfg.QuattStartDate, s.cfg.QuattEndDate)
	if err != nil {
		return nil, err
	}

	// Gas daily rows, when a gas meter is configured.
	var gasDaily []analysis.GasDay
	if s.cfg.GasEnabled {
		gasDaily, err = s.fetchGasDaily(hourly, p)
		if err != nil {
			return nil, err
		}
	}

	// Live minute-resolution history for knee detection.
	live, err := s.fetchLiveHistory()
	if err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{
		Stooklijn:    analysis.CalculateStooklijn(live, hourly, daily, p),
		HeatLossHP:   analysis.CalculateHeatLoss(daily, "heat_pump", p),
		LastAnalysis: time.Now().UTC(),
	}

	if len(gasDaily) > 0 {
		result.HeatLossGas = analysis.CalculateHeatLoss(analysis.GasDailyPoints(gasDaily), "gas", p)
	}

	result.AverageCOP = averageCOP(daily, p)
	result.ActualStooklijn = s.actualStooklijn()

	return result, nil
}

// fetchLiveHistory reads the recent temperature and power history from
// the recorder store, resamples both to per-minute medians and joins
// them on timestamp. Empty history yields an empty join, which downstream
// treats as the knee fallback case.
func (s *AnalysisService) fetchLiveHistory() ([]timeseries.TempPower, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -s.cfg.DaysHistory)

	temp, err := s.fetchFirstAvailable(s.cfg.TempEntities, from, to)
	if err != nil {
		return nil, err
	}

	power, err := s.samples.FetchRange(s.cfg.PowerEntity, from, to)
	if err != nil {
		return nil, err
	}

	temp = timeseries.Resample(temp, time.Minute, timeseries.Median)
	power = timeseries.Resample(power, time.Minute, timeseries.Median)

	merged := timeseries.MergeTempPower(temp, power)
	log.Printf("[Analysis] live history: %d temp, %d power, %d merged", len(temp), len(power), len(merged))
	return merged, nil
}

// fetchFirstAvailable tries the entities in priority order and returns
// the first one with any samples in the window.
func (s *AnalysisService) fetchFirstAvailable(entities []string, from, to time.Time) ([]timeseries.Point, error) {
	for _, entity := range entities {
		points, err := s.samples.FetchRange(entity, from, to)
		if err != nil {
			return nil, err
		}
		if len(points) > 0 {
			return points, nil
		}
	}
	return nil, nil
}

// fetchGasDaily reads the gas meter history and derives daily heat
// output. Outdoor temperature comes from the recorder when available,
// falling back to the insights hourly rows.
func (s *AnalysisService) fetchGasDaily(hourly []analysis.HourlyInsight, p analysis.Params) ([]analysis.GasDay, error) {
	from, err := time.Parse("2006-01-02", s.cfg.GasStartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid gas start date %q: %w", s.cfg.GasStartDate, err)
	}
	to, err := time.Parse("2006-01-02", s.cfg.GasEndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid gas end date %q: %w", s.cfg.GasEndDate, err)
	}
	to = to.AddDate(0, 0, 1) // end date inclusive

	readings, err := s.samples.FetchRange(s.cfg.GasEntity, from, to)
	if err != nil {
		return nil, err
	}

	temps, err := s.fetchFirstAvailable(s.cfg.TempEntities, from, to)
	if err != nil {
		return nil, err
	}
	if len(temps) == 0 {
		for _, row := range hourly {
			if !math.IsNaN(row.TempOutside) {
				temps = append(temps, timeseries.Point{Ts: row.Ts, Value: row.TempOutside})
			}
		}
	}

	_, gasDaily := analysis.ProcessGasReadings(readings, temps, p)
	log.Printf("[Analysis] gas: %d readings, %d daily rows", len(readings), len(gasDaily))
	return gasDaily, nil
}

// averageCOP is the mean COP over heating days: finite COP > 0 with heat
// demand at or above the heating threshold.
func averageCOP(daily []analysis.DailyPoint, p analysis.Params) *float64 {
	var cops []float64
	for _, day := range daily {
		if math.IsNaN(day.COP) || math.IsInf(day.COP, 0) || day.COP <= 0 {
			continue
		}
		if math.IsNaN(day.HeatPerHour) || day.HeatPerHour < p.MinHeatingWatts {
			continue
		}
		cops = append(cops, day.COP)
	}
	if len(cops) == 0 {
		return nil
	}
	avg := stats.Mean(cops)
	return &avg
}

// actualStooklijn derives slope/intercept from the two configured curve
// points. Absent unless all four values are set and the temperatures
// differ.
func (s *AnalysisService) actualStooklijn() *analysis.LineFit {
	t1, p1 := s.cfg.ActualStooklijnTemp1, s.cfg.ActualStooklijnPower1
	t2, p2 := s.cfg.ActualStooklijnTemp2, s.cfg.ActualStooklijnPower2
	if t1 == nil || p1 == nil || t2 == nil || p2 == nil {
		return nil
	}
	if *t1 == *t2 {
		return nil
	}
	slope := (*p2 - *p1) / (*t2 - *t1)
	return &analysis.LineFit{
		Slope:     slope,
		Intercept: *p1 - slope**t1,
	}
}
