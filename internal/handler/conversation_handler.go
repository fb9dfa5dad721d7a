package handler

import (
	"errors"
	"net/http"
	"strconv"

	"collabdesk/internal/engine"
	"collabdesk/internal/transport/httpdto"
	collab_errors "collabdesk/pkg/errors"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	engine *engine.Engine
}

func NewConversationHandler(e *engine.Engine) *ConversationHandler {
	return &ConversationHandler{engine: e}
}

func (h *ConversationHandler) List(c *gin.Context) {
	items := h.engine.Conversations.List()
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListConversationsResponse{
		Conversations: httpdto.FromConversationSlice(items),
	}))
}

func (h *ConversationHandler) Create(c *gin.Context) {
	var req httpdto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	conv, err := h.engine.CreateConversation(c.Request.Context(), req.ParticipantID, req.InitialMessage)
	if err != nil {
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversation(conv)))
}

func (h *ConversationHandler) Get(c *gin.Context) {
	conv, ok := h.engine.Conversations.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("conversation not found", "NOT_FOUND"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromConversation(conv)))
}

// Select makes a conversation the active one. In-flight history loads
// for other conversations are cancelled and the conversation is marked
// read.
func (h *ConversationHandler) Select(c *gin.Context) {
	h.engine.SelectConversation(c.Param("id"))
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"active": c.Param("id")}))
}

func (h *ConversationHandler) Deselect(c *gin.Context) {
	h.engine.SelectConversation("")
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"active": ""}))
}

func (h *ConversationHandler) MarkRead(c *gin.Context) {
	if err := h.engine.Lifecycle.MarkConversationRead(c.Param("id")); err != nil {
		if errors.Is(err, collab_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("conversation not found", "NOT_FOUND"))
			return
		}
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "read"}))
}

// Messages returns the loaded window for a conversation. With a before
// cursor it loads the next older page first; without one it ensures the
// newest page is present.
func (h *ConversationHandler) Messages(c *gin.Context) {
	conversationID := c.Param("id")
	before := c.Query("before")
	limit, _ := strconv.Atoi(c.Query("limit"))

	page, err := h.engine.History.LoadPage(c.Request.Context(), conversationID, before, limit)
	if err != nil {
		if errors.Is(err, collab_errors.ErrRequestCancelled) {
			c.JSON(http.StatusConflict, httpdto.NewErrorResponse("load cancelled", "CANCELLED"))
			return
		}
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}

	msgs := page.Messages
	if before == "" {
		msgs = h.engine.Messages.List(conversationID)
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListMessagesResponse{
		Messages:   httpdto.FromMessageSlice(msgs),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}))
}

type typingRequest struct {
	Typing *bool `json:"typing"`
}

// Typing registers local typing activity; {"typing": false} closes the
// window immediately.
func (h *ConversationHandler) Typing(c *gin.Context) {
	var req typingRequest
	_ = c.ShouldBindJSON(&req)
	conversationID := c.Param("id")
	if req.Typing != nil && !*req.Typing {
		h.engine.Typing.StopLocal(conversationID)
	} else {
		h.engine.Typing.Keystroke(conversationID)
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
		"typing": h.engine.Typing.LocalTyping(conversationID),
	}))
}
