package handler

import (
	"errors"
	"net/http"

	"collabdesk/internal/engine"
	"collabdesk/internal/transport/httpdto"
	collab_errors "collabdesk/pkg/errors"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	engine *engine.Engine
}

func NewMessageHandler(e *engine.Engine) *MessageHandler {
	return &MessageHandler{engine: e}
}

// Send starts an optimistic send. By default it answers immediately with
// the pending message; ?wait=1 blocks until the send resolves and answers
// with either the confirmed message or the failure plus the original
// content.
func (h *MessageHandler) Send(c *gin.Context) {
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	conversationID := c.Param("id")
	msg, outcome, err := h.engine.Lifecycle.Send(c.Request.Context(), conversationID, req.Content, req.Attachments)
	if err != nil {
		if errors.Is(err, collab_errors.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("message has no content", "EMPTY_MESSAGE"))
			return
		}
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}

	if c.Query("wait") == "" {
		resp := httpdto.FromMessage(msg)
		c.JSON(http.StatusAccepted, httpdto.NewSuccessResponse(httpdto.SendMessageResponse{
			Message: &resp,
		}))
		return
	}

	select {
	case <-c.Request.Context().Done():
		// The send itself keeps running; only this wait is abandoned.
		resp := httpdto.FromMessage(msg)
		c.JSON(http.StatusAccepted, httpdto.NewSuccessResponse(httpdto.SendMessageResponse{
			Message: &resp,
		}))
	case out := <-outcome:
		if out.Err != nil {
			c.JSON(http.StatusBadGateway, httpdto.NewSuccessResponse(httpdto.SendMessageResponse{
				Failed:  true,
				Content: out.Content,
				Error:   out.Err.Error(),
			}))
			return
		}
		resp := httpdto.FromMessage(out.Message)
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.SendMessageResponse{
			Message: &resp,
		}))
	}
}
