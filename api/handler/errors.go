package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lightning66/GiftMe/models"
)

// Client-facing messages for fetch failures.
const (
	msgTimeout = "Page load timed out - try providing price manually"
	msgNetwork = "Failed to fetch item - try providing price manually"
)

// fetchErrorResponse maps an extraction error to a status code and body.
func fetchErrorResponse(err error) (int, models.ErrorResponse) {
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		return http.StatusInternalServerError, models.ErrorResponse{Error: msgNetwork, Code: models.ErrCodeInternal}
	}

	switch fe.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout, models.ErrorResponse{Error: msgTimeout, Code: fe.Code}
	case models.ErrCodeUpstream:
		return http.StatusBadGateway, models.ErrorResponse{
			Error: fmt.Sprintf("Upstream fetch failed with status %d", fe.StatusCode),
			Code:  fe.Code,
		}
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest, models.ErrorResponse{Error: fe.Message, Code: fe.Code}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{Error: msgNetwork, Code: fe.Code}
	}
}

// respondError writes a JSON error body with the given status.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{Error: message, Code: code})
}

// respondInternal logs err and writes a 500 with message.
func respondInternal(c *gin.Context, message string, err error) {
	slog.Error(message, "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, models.ErrCodeInternal, message)
}
