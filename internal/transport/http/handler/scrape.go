package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"propertydesk/internal/app"
	"propertydesk/internal/extract"
	"propertydesk/internal/transport/http/response"
)

type Scraper interface {
	Scrape(ctx context.Context, url string) (*extract.ExtractedProperty, error)
}

type ScrapeHandler struct {
	scraper Scraper
}

type ScrapeRequest struct {
	URL string `json:"url"`
}

func NewScrapeHandler(scraper Scraper) *ScrapeHandler {
	return &ScrapeHandler{scraper: scraper}
}

// Scrape answers 200 for every extraction outcome and reports failures in
// band as {success:false,error}. A failed page fetch also carries the
// upstream status. Only a missing model key is a server error.
func (h *ScrapeHandler) Scrape(c *gin.Context) {
	var req ScrapeRequest
	// An unreadable body is treated as an empty url; the bind error is kept
	// for the request log.
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
	}

	record, err := h.scraper.Scrape(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, app.ErrLLMConfig) {
			response.Error(c, http.StatusInternalServerError, response.CodeServerConfig, err.Error())
			return
		}
		_ = c.Error(err)
		body := gin.H{"success": false, "error": err.Error()}
		var fetchErr *extract.FetchError
		if errors.As(err, &fetchErr) && fetchErr.Status != 0 {
			body["status"] = fetchErr.Status
		}
		c.JSON(http.StatusOK, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}
