package handler

import (
	"errors"
	"net/http"

	"collabdesk/internal/attachments"
	"collabdesk/internal/transport/httpdto"
	collab_errors "collabdesk/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	uploader *attachments.Uploader
}

func NewAttachmentHandler(u *attachments.Uploader) *AttachmentHandler {
	return &AttachmentHandler{uploader: u}
}

// Upload stores a multipart file in object storage and returns the
// attachment record to reference in a later send call.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("attachment storage not configured", "UNAVAILABLE"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("missing file field", "INVALID_REQUEST"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unreadable file", "INVALID_REQUEST"))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	att, err := h.uploader.Upload(c.Request.Context(), fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, collab_errors.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
		case errors.Is(err, collab_errors.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("attachment storage not configured", "UNAVAILABLE"))
		default:
			c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "UPLOAD_FAILED"))
		}
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(att))
}
