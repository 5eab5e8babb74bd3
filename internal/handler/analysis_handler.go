package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Appesteijn/stooklijn/internal/service"
	"github.com/Appesteijn/stooklijn/pkg/response"
)

// AnalysisHandler handles HTTP requests for analysis runs and results
type AnalysisHandler struct {
	service *service.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// StartRun starts a new analysis run
// POST /api/v1/analysis/run
func (h *AnalysisHandler) StartRun(c *gin.Context) {
	run, err := h.service.StartRun()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, run)
}

// GetRun retrieves a run by ID
// GET /api/v1/analysis/runs/:id
func (h *AnalysisHandler) GetRun(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid run ID")
		return
	}

	run, err := h.service.GetRun(id)
	if err != nil {
		response.Error(c, http.StatusNotFound, err.Error())
		return
	}

	response.Success(c, run)
}

// Latest retrieves the most recently completed run
// GET /api/v1/analysis/latest
func (h *AnalysisHandler) Latest(c *gin.Context) {
	run, err := h.service.LatestResult()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if run == nil {
		response.NotFound(c, "No completed analysis yet")
		return
	}

	response.Success(c, run)
}

// Stooklijn returns the heating-curve groups of the latest result.
// Absent groups are omitted from the JSON; the caller renders them as
// unknown.
// GET /api/v1/results/stooklijn
func (h *AnalysisHandler) Stooklijn(c *gin.Context) {
	run, err := h.service.LatestResult()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if run == nil || run.Result == nil {
		response.NotFound(c, "No completed analysis yet")
		return
	}

	response.Success(c, gin.H{
		"stooklijn":        run.Result.Stooklijn,
		"actual_stooklijn": run.Result.ActualStooklijn,
		"average_cop":      run.Result.AverageCOP,
		"last_analysis":    run.Result.LastAnalysis,
	})
}

// HeatLoss returns the heat-loss groups of the latest result
// GET /api/v1/results/heat-loss
func (h *AnalysisHandler) HeatLoss(c *gin.Context) {
	run, err := h.service.LatestResult()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if run == nil || run.Result == nil {
		response.NotFound(c, "No completed analysis yet")
		return
	}

	response.Success(c, gin.H{
		"heat_loss_hp":  run.Result.HeatLossHP,
		"heat_loss_gas": run.Result.HeatLossGas,
		"last_analysis": run.Result.LastAnalysis,
	})
}
