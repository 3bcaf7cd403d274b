package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		uri := c.Request.URL.RequestURI()

		c.Next()

		logger.Info().
			Str("remote", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("uri", uri).
			Int64("µs", time.Since(start).Microseconds()).
			Int("status", c.Writer.Status()).
			Int("size", c.Writer.Size()).
			Msg("request")
	}
}

// Recovery turns panics into 500s and logs them.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().Interface("panic", recovered).Str("uri", c.Request.URL.RequestURI()).Msg("caught panic")
		c.AbortWithStatus(500)
	})
}
