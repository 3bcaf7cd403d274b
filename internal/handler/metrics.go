package handler

import (
	"context"
	"net/http"

	"place-lookup/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// MetricsHandler reports backend metrics
type MetricsHandler struct {
	service MetricsService
}

// MetricsService interface for dependency injection
type MetricsService interface {
	Metrics(ctx context.Context) (*models.Metrics, error)
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(svc MetricsService) *MetricsHandler {
	return &MetricsHandler{service: svc}
}

// GetMetrics handles GET /metrics requests
//
//	@Summary	Place counts, completion settings and cache metrics
//	@Produce	json
//	@Success	200	{object}	models.Metrics
//	@Router		/metrics [get]
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	metrics, err := h.service.Metrics(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("metrics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, metrics)
}
