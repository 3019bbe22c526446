package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lightning66/GiftMe/models"
)

// ImageStreamer opens a remote resource for relaying.
type ImageStreamer interface {
	Stream(ctx context.Context, targetURL string) (*http.Response, error)
}

// ProxyImage returns a handler for GET /proxy-image?url=.
//
// The upstream body is relayed as-is with its Content-Type. Relaying is
// bounded by timeout.
func ProxyImage(s ImageStreamer, timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return func(c *gin.Context) {
		raw := c.Query("url")
		if raw == "" {
			respondError(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "Image URL required")
			return
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			respondError(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "Invalid image URL")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		resp, err := s.Stream(ctx, raw)
		if err != nil {
			var fe *models.FetchError
			if errors.As(err, &fe) && fe.Code == models.ErrCodeUpstream {
				respondError(c, http.StatusBadGateway, fe.Code, "Failed to fetch image")
				return
			}
			slog.Warn("proxy-image failed", "url", raw, "error", err)
			respondError(c, http.StatusInternalServerError, models.ErrCodeNetwork, "Error fetching image")
			return
		}
		defer resp.Body.Close()

		contentType := resp.Header.Get("Content-Type")
		if strings.TrimSpace(contentType) == "" {
			contentType = "image/*"
		}
		c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, map[string]string{
			"Cache-Control": "public, max-age=86400",
		})
	}
}
