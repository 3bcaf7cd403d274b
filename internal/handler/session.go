package handler

import (
	"context"
	"errors"
	"net/http"

	"place-lookup/internal/client"
	"place-lookup/internal/service"
	"place-lookup/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SessionService interface for dependency injection
type SessionService interface {
	Create() (string, session.Snapshot)
	Get(id string) (session.Snapshot, error)
	Delete(id string) error
	SuggestionText(ctx context.Context, id, text string) (session.Snapshot, error)
	Commit(id string, i int) (session.Snapshot, error)
	RefinementText(ctx context.Context, id, text string) (session.Snapshot, error)
	RefinementCommit(ctx context.Context, id, text string) (session.Snapshot, error)
}

// SessionHandler exposes lookup sessions over HTTP.
type SessionHandler struct {
	service SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// RegisterRoutes registers the session routes on r.
func (h *SessionHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/sessions", h.Create)
	r.GET("/sessions/:id", h.Get)
	r.DELETE("/sessions/:id", h.Delete)
	r.PUT("/sessions/:id/text", h.SuggestionText)
	r.POST("/sessions/:id/commit", h.Commit)
	r.PUT("/sessions/:id/refinement", h.RefinementText)
	r.POST("/sessions/:id/refinement/commit", h.RefinementCommit)
}

type textRequest struct {
	Text *string `json:"text" binding:"required"`
}

type commitRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

type sessionResponse struct {
	ID string `json:"id"`
	session.Snapshot
	Warning string `json:"warning,omitempty"`
}

// Create handles POST /sessions
func (h *SessionHandler) Create(c *gin.Context) {
	id, snap := h.service.Create()
	c.JSON(http.StatusCreated, sessionResponse{ID: id, Snapshot: snap})
}

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	snap, err := h.service.Get(id)
	h.respond(c, id, snap, err)
}

// Delete handles DELETE /sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SuggestionText handles PUT /sessions/:id/text
func (h *SessionHandler) SuggestionText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field 'text'"})
		return
	}
	id := c.Param("id")
	snap, err := h.service.SuggestionText(c.Request.Context(), id, *req.Text)
	h.respond(c, id, snap, err)
}

// Commit handles POST /sessions/:id/commit
func (h *SessionHandler) Commit(c *gin.Context) {
	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field 'index' must be a non-negative integer"})
		return
	}
	id := c.Param("id")
	snap, err := h.service.Commit(id, *req.Index)
	h.respond(c, id, snap, err)
}

// RefinementText handles PUT /sessions/:id/refinement
func (h *SessionHandler) RefinementText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field 'text'"})
		return
	}
	id := c.Param("id")
	snap, err := h.service.RefinementText(c.Request.Context(), id, *req.Text)
	h.respond(c, id, snap, err)
}

// RefinementCommit handles POST /sessions/:id/refinement/commit
func (h *SessionHandler) RefinementCommit(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required field 'text'"})
		return
	}
	id := c.Param("id")
	snap, err := h.service.RefinementCommit(c.Request.Context(), id, *req.Text)
	h.respond(c, id, snap, err)
}

// respond maps session errors to statuses. Source failures and unmatched
// refinements are not errors of the request: the state is returned with a
// warning.
func (h *SessionHandler) respond(c *gin.Context, id string, snap session.Snapshot, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, sessionResponse{ID: id, Snapshot: snap})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, session.ErrWrongMode):
		c.JSON(http.StatusConflict, gin.H{"error": "not possible in mode " + snap.Mode.String()})
	case errors.Is(err, session.ErrNoSuchSuggestion):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no such suggestion"})
	case errors.Is(err, session.ErrStaleResponse):
		c.JSON(http.StatusOK, sessionResponse{ID: id, Snapshot: snap})
	case errors.Is(err, client.ErrRefinementNotFound):
		c.JSON(http.StatusOK, sessionResponse{ID: id, Snapshot: snap, Warning: "not found"})
	case errors.Is(err, client.ErrSourceUnavailable):
		c.JSON(http.StatusOK, sessionResponse{ID: id, Snapshot: snap, Warning: "places source unavailable"})
	default:
		log.Error().Err(err).Str("session", id).Msg("session request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
