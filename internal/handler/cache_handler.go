package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Appesteijn/stooklijn/internal/repository"
	"github.com/Appesteijn/stooklijn/pkg/response"
)

// CacheHandler handles HTTP requests for the insights cache
type CacheHandler struct {
	repo *repository.InsightsRepository
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(repo *repository.InsightsRepository) *CacheHandler {
	return &CacheHandler{repo: repo}
}

// Stats returns cache statistics
// GET /api/v1/cache/stats
func (h *CacheHandler) Stats(c *gin.Context) {
	stats, err := h.repo.Stats()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, stats)
}

// Cleanup removes cached days older than the retention window
// POST /api/v1/cache/cleanup
func (h *CacheHandler) Cleanup(c *gin.Context) {
	daysStr := c.DefaultQuery("days", "365")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		response.BadRequest(c, "Invalid days parameter")
		return
	}

	removed, err := h.repo.Cleanup(days)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"removed": removed,
		"days":    days,
	})
}
