package handler

import (
	"net/http"

	"collabdesk/internal/engine"
	"collabdesk/internal/platform"
	"collabdesk/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	engine *engine.Engine
	host   *platform.Host
}

func NewNotificationHandler(e *engine.Engine, host *platform.Host) *NotificationHandler {
	return &NotificationHandler{engine: e, host: host}
}

func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.engine.Notifications(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NotificationListResponse{
		Notifications: items,
	}))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.engine.MarkNotificationRead(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "read"}))
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.engine.MarkAllNotificationsRead(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "read"}))
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.engine.DeleteNotification(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "REQUEST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "deleted"}))
}

func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.engine.Preferences.Get()))
}

// UpdatePreferences applies a partial patch optimistically. A persistence
// failure reverts the local copy, so the error answer reflects the state
// the caller actually has.
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	var patch httpdto.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if err := h.engine.Preferences.Update(c.Request.Context(), patch.Apply); err != nil {
		c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(err.Error(), "PERSIST_FAILED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.engine.Preferences.Get()))
}

// Visibility records whether the client window is visible; desktop
// notifications only fire while it is not.
func (h *NotificationHandler) Visibility(c *gin.Context) {
	var req httpdto.VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	h.host.SetVisible(req.Visible)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"visible": req.Visible}))
}

func (h *NotificationHandler) Permission(c *gin.Context) {
	var req httpdto.PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if !req.State.Valid() {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unknown permission state", "INVALID_REQUEST"))
		return
	}
	h.host.SetNotificationPermission(req.State)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"state": req.State}))
}
