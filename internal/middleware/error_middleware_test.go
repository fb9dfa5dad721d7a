package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	collab_errors "collabdesk/pkg/errors"
	"collabdesk/pkg/logger"
)

func TestErrorHandlerClassifiesSentinels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{collab_errors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{collab_errors.ErrEmptyMessage, http.StatusBadRequest, "INVALID_REQUEST"},
		{fmt.Errorf("wrap: %w", collab_errors.ErrInvalidInput), http.StatusBadRequest, "INVALID_REQUEST"},
		{collab_errors.ErrConflict, http.StatusConflict, "CONFLICT"},
		{collab_errors.ErrRequestCancelled, http.StatusConflict, "CANCELLED"},
		{collab_errors.ErrUnavailable, http.StatusServiceUnavailable, "UNAVAILABLE"},
		{collab_errors.ErrSendFailed, http.StatusBadGateway, "SEND_FAILED"},
		{fmt.Errorf("something else"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		status, code := classifyError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestErrorHandlerWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(logger.NewNop()))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(collab_errors.ErrNotFound)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestErrorHandlerSkipsWrittenResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(logger.NewNop()))
	r.GET("/handled", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"handled": true})
		_ = c.Error(collab_errors.ErrInvalidInput)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/handled", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "handled")
	assert.NotContains(t, w.Body.String(), "INVALID_REQUEST")
}
