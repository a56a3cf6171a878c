package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/middleware"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/service"
)

// ChatHandler handles message submission and retrieval
type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// AddMessage godoc
// @Summary Send a message to a user or to the sender's station
// @Tags Chats
// @Accept json
// @Produce json
// @Param session-id header string true "Session id"
// @Param body body model.AddMessageRequest true "Message payload"
// @Success 200 {object} model.MessageView
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /messages [post]
func (h *ChatHandler) AddMessage(c *gin.Context) {
	var req model.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user := middleware.UserFrom(c)
	view, err := h.chatService.AddMessage(user, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetChat godoc
// @Summary Get one conversation, station or private
// @Tags Chats
// @Produce json
// @Param session-id header string true "Session id"
// @Param receiver_id path string true "Station or user id"
// @Param offset query int false "Paging offset"
// @Param limit query int false "Page size"
// @Success 200 {object} model.ChatView
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /messages/{receiver_id} [get]
func (h *ChatHandler) GetChat(c *gin.Context) {
	receiverID, err := uuid.Parse(c.Param("receiver_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Text:       "there is no receiver with id " + c.Param("receiver_id"),
		})
		return
	}

	user := middleware.UserFrom(c)
	chat, err := h.chatService.GetChat(receiverID, user.ID, c.Query("offset"), c.Query("limit"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// GetChats godoc
// @Summary Get the user's chat list
// @Tags Chats
// @Produce json
// @Param session-id header string true "Session id"
// @Param offset query int false "Paging offset over private chats"
// @Param limit query int false "Page size over private chats"
// @Success 200 {object} model.ChatListView
// @Failure 400 {object} model.ErrorResponse
// @Router /chats [get]
func (h *ChatHandler) GetChats(c *gin.Context) {
	user := middleware.UserFrom(c)
	chats, err := h.chatService.GetChats(user, c.Query("offset"), c.Query("limit"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// ResetUnread godoc
// @Summary Reset an unread counter to an explicit value
// @Tags Chats
// @Accept json
// @Produce json
// @Param session-id header string true "Session id"
// @Param body body model.ResetUnreadRequest true "Counter key and value"
// @Success 200 {object} model.Unread
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /chats/unread [post]
func (h *ChatHandler) ResetUnread(c *gin.Context) {
	var req model.ResetUnreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user := middleware.UserFrom(c)
	unread, err := h.chatService.ResetUnread(user, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, unread)
}
