package handler

import (
	"context"
	"errors"
	"net/http"

	"place-lookup/internal/models"
	"place-lookup/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PlaceHandler handles place lookups
type PlaceHandler struct {
	service PlaceService
}

// PlaceService interface for dependency injection
type PlaceService interface {
	GetPlace(ctx context.Context, id string, houseNumber string) (*models.Place, error)
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(svc PlaceService) *PlaceHandler {
	return &PlaceHandler{service: svc}
}

// GetPlace handles GET /api/place/:id requests
//
//	@Summary	Get a place, optionally refined by a house number
//	@Produce	json
//	@Param		id			path		string	true	"place id"
//	@Param		houseNumber	query		string	false	"house number"
//	@Success	200			{object}	models.Place
//	@Failure	400			{object}	map[string]string
//	@Failure	404			{object}	map[string]string
//	@Router		/api/place/{id} [get]
func (h *PlaceHandler) GetPlace(c *gin.Context) {
	id := c.Param("id")
	houseNumber := c.Query("houseNumber")

	place, err := h.service.GetPlace(c.Request.Context(), id, houseNumber)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlaceID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid place id"})
			return
		}
		log.Error().Err(err).Str("id", id).Msg("place lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if place == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no place found"})
		return
	}

	c.JSON(http.StatusOK, place)
}
