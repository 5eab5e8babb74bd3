package models

import (
	"time"

	"github.com/Appesteijn/stooklijn/internal/analysis"
)

// Run status constants
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// AnalysisRun tracks one analysis job through its lifecycle.
type AnalysisRun struct {
	ID           int64           `json:"id"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Result       *AnalysisResult `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// AnalysisResult is the assembled output of one analysis run. Absent
// groups mean the corresponding track had insufficient data; consumers
// must render them as unknown, never as zero.
type AnalysisResult struct {
	Stooklijn   analysis.StooklijnResult `json:"stooklijn"`
	HeatLossHP  analysis.HeatLossResult  `json:"heat_loss_hp"`
	HeatLossGas analysis.HeatLossResult  `json:"heat_loss_gas"`

	AverageCOP *float64 `json:"average_cop,omitempty"`

	// Currently configured heating curve, derived from two config points.
	ActualStooklijn *analysis.LineFit `json:"actual_stooklijn,omitempty"`

	LastAnalysis time.Time `json:"last_analysis"`
}
