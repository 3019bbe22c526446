package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lightning66/GiftMe/models"
)

// ItemExtractor fetches a product page and extracts it.
type ItemExtractor interface {
	Run(ctx context.Context, req models.ExtractRequest) (*models.ExtractResult, error)
}

// FetchItem returns a handler for POST /fetch-item.
//
// Flow:
//  1. Bind the body; url is required.
//  2. Engine.Run → fetch + extract (the engine validates the URL).
//  3. Map FetchError codes to 400/502/504/500.
func FetchItem(ex ItemExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "URL is required")
			return
		}

		res, err := ex.Run(c.Request.Context(), req)
		if err != nil {
			status, body := fetchErrorResponse(err)
			c.JSON(status, body)
			return
		}

		c.JSON(http.StatusOK, res)
	}
}
