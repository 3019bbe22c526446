package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lightning66/GiftMe/models"
	"golang.org/x/sync/errgroup"
)

// FetchItems returns a handler for POST /fetch-items.
//
// Each URL runs the single-item pipeline independently with at most
// concurrency in flight. A failing URL only fails its own entry; the
// response is always 200 with results in request order.
func FetchItems(ex ItemExtractor, concurrency int) gin.HandlerFunc {
	if concurrency < 1 {
		concurrency = 1
	}
	return func(c *gin.Context) {
		var req models.BatchExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "urls must contain between 1 and 20 URLs")
			return
		}

		start := time.Now()
		entries := make([]models.BatchExtractEntry, len(req.URLs))

		var g errgroup.Group
		g.SetLimit(concurrency)
		for i, u := range req.URLs {
			g.Go(func() error {
				entries[i].URL = u
				res, err := ex.Run(c.Request.Context(), models.ExtractRequest{URL: u})
				if err != nil {
					_, body := fetchErrorResponse(err)
					entries[i].Error = &body
					return nil
				}
				entries[i].Result = res
				return nil
			})
		}
		_ = g.Wait()

		resp := models.BatchExtractResponse{Results: entries}
		for _, e := range entries {
			if e.Error != nil {
				resp.Failed++
			} else {
				resp.Completed++
			}
		}

		slog.Info("batch completed",
			"total", len(entries),
			"completed", resp.Completed,
			"failed", resp.Failed,
			"elapsed", time.Since(start),
		)
		c.JSON(http.StatusOK, resp)
	}
}
