package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neartalkapp/neartalk/internal/middleware"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/service"
	"github.com/neartalkapp/neartalk/pkg/notification"
)

// PushHandler handles Web Push device registration
type PushHandler struct {
	pushService *service.PushService
	dispatcher  *notification.Dispatcher
}

func NewPushHandler(pushService *service.PushService, dispatcher *notification.Dispatcher) *PushHandler {
	return &PushHandler{pushService: pushService, dispatcher: dispatcher}
}

// Subscribe godoc
// @Summary Register this device for push notifications
// @Tags Push
// @Accept json
// @Produce json
// @Param session-id header string true "Session id"
// @Param body body model.PushSubscribeRequest true "Browser push subscription"
// @Success 201 {object} model.PushSubscriptionResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /push-notifications/subscribe [post]
func (h *PushHandler) Subscribe(c *gin.Context) {
	var req model.PushSubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user := middleware.UserFrom(c)
	sub, err := h.pushService.Subscribe(user, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub.ToResponse())
}

// Unsubscribe godoc
// @Summary Remove this device's push registration
// @Tags Push
// @Accept json
// @Param session-id header string true "Session id"
// @Param body body model.PushSubscribeRequest true "Browser push subscription"
// @Success 204
// @Failure 404 {object} model.ErrorResponse
// @Router /push-notifications/unsubscribe [post]
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req model.PushSubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user := middleware.UserFrom(c)
	if err := h.pushService.Unsubscribe(user, req); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// VAPIDKey godoc
// @Summary Get the VAPID public key clients subscribe with
// @Tags Push
// @Produce json
// @Success 200 {object} map[string]string
// @Router /push-notifications/vapid-key [get]
func (h *PushHandler) VAPIDKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"public_key": h.dispatcher.PublicKey()})
}
