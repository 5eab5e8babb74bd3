package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Appesteijn/stooklijn/internal/models"
)

// RunRepository handles database operations for analysis runs.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a pending run and returns its ID.
func (r *RunRepository) Create() (int64, error) {
	res, err := r.db.Exec(`INSERT INTO analysis_runs (status) VALUES (?)`, models.RunStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	return res.LastInsertId()
}

// MarkRunning marks a run as started.
func (r *RunRepository) MarkRunning(id int64) error {
	_, err := r.db.Exec(
		`UPDATE analysis_runs SET status = ?, started_at = CURRENT_TIMESTAMP WHERE id = ?`,
		models.RunStatusRunning, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run running: %w", err)
	}
	return nil
}

// MarkCompleted stores the result and marks the run completed.
func (r *RunRepository) MarkCompleted(id int64, result *models.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}

	_, err = r.db.Exec(
		`UPDATE analysis_runs SET status = ?, result_json = ?, completed_at = CURRENT_TIMESTAMP WHERE id = ?`,
		models.RunStatusCompleted, string(payload), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}
	return nil
}

// MarkFailed marks a run as failed with an error message.
func (r *RunRepository) MarkFailed(id int64, errorMsg string) error {
	_, err := r.db.Exec(
		`UPDATE analysis_runs SET status = ?, error_message = ?, completed_at = CURRENT_TIMESTAMP WHERE id = ?`,
		models.RunStatusFailed, errorMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}

// Get retrieves a run by ID, or nil when it does not exist.
func (r *RunRepository) Get(id int64) (*models.AnalysisRun, error) {
	return r.scanRun(r.db.QueryRow(
		`SELECT id, status, error_message, result_json, created_at, started_at, completed_at
		 FROM analysis_runs WHERE id = ?`, id,
	))
}

// Latest retrieves the most recent completed run, or nil when none
// completed yet.
func (r *RunRepository) Latest() (*models.AnalysisRun, error) {
	return r.scanRun(r.db.QueryRow(
		`SELECT id, status, error_message, result_json, created_at, started_at, completed_at
		 FROM analysis_runs WHERE status = ? ORDER BY completed_at DESC LIMIT 1`,
		models.RunStatusCompleted,
	))
}

func (r *RunRepository) scanRun(row *sql.Row) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	var errorMsg, resultJSON sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(&run.ID, &run.Status, &errorMsg, &resultJSON, &run.CreatedAt, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if errorMsg.Valid {
		run.ErrorMessage = errorMsg.String
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var result models.AnalysisResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("failed to decode run result: %w", err)
		}
		run.Result = &result
	}
	if startedAt.Valid {
		t := startedAt.Time
		run.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}

	return &run, nil
}
