package middleware

import (
	"errors"
	"net/http"

	"collabdesk/internal/transport/httpdto"
	collab_errors "collabdesk/pkg/errors"
	"collabdesk/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler converts errors attached to the gin context into the
// standard error envelope, mapping the engine's sentinel errors onto
// status codes.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Errorf("request error: %s", err.Error())
		}
		if c.Writer.Written() {
			return
		}
		status, code := classifyError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
	}
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, collab_errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, collab_errors.ErrInvalidInput), errors.Is(err, collab_errors.ErrEmptyMessage):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, collab_errors.ErrConflict), errors.Is(err, collab_errors.ErrAlreadyExists):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, collab_errors.ErrRequestCancelled):
		return http.StatusConflict, "CANCELLED"
	case errors.Is(err, collab_errors.ErrUnavailable):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	case errors.Is(err, collab_errors.ErrSendFailed):
		return http.StatusBadGateway, "SEND_FAILED"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
