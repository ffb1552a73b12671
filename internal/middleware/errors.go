package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qwlai/reit-tracker/internal/domain/dto"
	"github.com/qwlai/reit-tracker/internal/logger"
)

// ErrorHandler renders errors attached with c.Error() once the handler chain
// has finished and nothing has been written yet.
//
// An attached dto.ErrorResponse is returned as-is; any other error becomes a
// generic 500 body.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	last := c.Errors.Last().Err
	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().Err(last).Str("request_id", toString(rid)).Msg("request failed")

	var resp dto.ErrorResponse
	if !errors.As(last, &resp) {
		resp = dto.NewErrorResponse("Internal server error", last)
	}

	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	c.JSON(status, resp)
}

// AbortWithError stops the chain and writes a standard error body with the given status.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
