package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qwlai/reit-tracker/internal/domain/dto"
	"github.com/qwlai/reit-tracker/internal/middleware"
	"github.com/qwlai/reit-tracker/internal/service"
)

// Handler serves the crawled REIT documents.
type Handler struct {
	svc service.ReitService
}

func NewHandler(svc service.ReitService) *Handler {
	return &Handler{svc: svc}
}

// GetLatest handles GET /api/v1/reits/latest.
//
// Responses:
//   - 200 OK: the newest stored document, keyed by provider symbol.
//   - 404 Not Found: no crawl has been stored yet.
//   - 500 Internal Server Error: the document store failed.
//
// GetLatest godoc
// @Summary      Latest REIT snapshot
// @Description  Returns the most recent crawl: one record per provider symbol plus the capture timestamp
// @Tags         reits
// @Produce      json
// @Success      200  {object}  dto.LatestResponse  "Success"
// @Failure      404  {object}  dto.ErrorResponse   "Not Found"
// @Failure      500  {object}  dto.ErrorResponse   "Internal Error"
// @Router       /api/v1/reits/latest [get]
func (h *Handler) GetLatest(c *gin.Context) {
	doc, err := h.svc.Latest(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to load latest document", err)
		return
	}
	if doc == nil {
		middleware.AbortWithError(c, http.StatusNotFound, "no data found", nil)
		return
	}

	c.JSON(http.StatusOK, dto.LatestResponse{ID: doc.ID, Document: doc.Body})
}
