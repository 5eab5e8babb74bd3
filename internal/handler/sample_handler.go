package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Appesteijn/stooklijn/internal/models"
	"github.com/Appesteijn/stooklijn/internal/repository"
	"github.com/Appesteijn/stooklijn/pkg/response"
)

// SampleHandler handles HTTP requests for raw sensor sample ingest
type SampleHandler struct {
	repo *repository.SampleRepository
}

// NewSampleHandler creates a new sample handler
func NewSampleHandler(repo *repository.SampleRepository) *SampleHandler {
	return &SampleHandler{repo: repo}
}

type sampleIn struct {
	EntityID string  `json:"entity_id" binding:"required"`
	Ts       int64   `json:"ts" binding:"required"` // unix seconds
	Value    float64 `json:"value"`
}

type ingestRequest struct {
	Samples []sampleIn `json:"samples" binding:"required"`
}

// Ingest stores a batch of sensor samples. Re-sent samples overwrite
// (last write wins), so feeders can replay safely.
// POST /api/v1/samples
func (h *SampleHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	samples := make([]models.Sample, 0, len(req.Samples))
	for _, s := range req.Samples {
		samples = append(samples, models.Sample{
			EntityID: s.EntityID,
			Ts:       time.Unix(s.Ts, 0).UTC(),
			Value:    s.Value,
		})
	}

	inserted, err := h.repo.InsertSamples(samples)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"received": len(req.Samples),
		"stored":   inserted,
	})
}
