package handler

import (
	"context"
	"net/http"

	"place-lookup/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CompletionHandler handles completion requests
type CompletionHandler struct {
	service CompletionService
}

// CompletionService interface for dependency injection
type CompletionService interface {
	Complete(context.Context, string) ([]models.Suggestion, error)
}

// NewCompletionHandler creates a new completion handler
func NewCompletionHandler(svc CompletionService) *CompletionHandler {
	return &CompletionHandler{service: svc}
}

// Complete handles GET /api/complete requests
//
//	@Summary	Complete a typed text to ranked places
//	@Produce	json
//	@Param		text	query		string	true	"typed text"
//	@Success	200		{array}		models.Suggestion
//	@Failure	400		{object}	map[string]string
//	@Router		/api/complete [get]
func (h *CompletionHandler) Complete(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'text'"})
		return
	}

	suggestions, err := h.service.Complete(c.Request.Context(), text)
	if err != nil {
		log.Error().Err(err).Str("text", text).Msg("completion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, suggestions)
}
