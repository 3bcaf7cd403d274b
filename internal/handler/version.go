package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// VersionHandler reports the build version.
type VersionHandler struct {
	Version string `json:"version"`
	Hash    string `json:"hash"`
}

// NewVersionHandler creates a version handler for the given build.
func NewVersionHandler(version, hash string) *VersionHandler {
	return &VersionHandler{Version: version, Hash: hash}
}

// GetVersion handles GET /version requests
//
//	@Summary	Build version and git hash
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/version [get]
func (h *VersionHandler) GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, h)
}
