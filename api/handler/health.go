package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lightning66/GiftMe/models"
)

// Version is reported by GET /health.
const Version = "1.0.0"

// Health returns a handler for GET /health.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
		})
	}
}
