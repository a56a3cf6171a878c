package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/middleware"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/service"
)

// UserHandler handles registration and profile endpoints
type UserHandler struct {
	authService *service.AuthService
}

func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// Register godoc
// @Summary Register a new user
// @Tags Users
// @Accept json
// @Produce json
// @Param body body model.RegisterRequest true "Register request"
// @Success 201 {object} model.UserPublic
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.authService.Register(req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, user.ToPublic())
}

// GetUser godoc
// @Summary Get a user's public profile
// @Tags Users
// @Produce json
// @Param session-id header string true "Session id"
// @Param user_id path string true "User id"
// @Success 200 {object} model.UserPublic
// @Failure 404 {object} model.ErrorResponse
// @Router /users/{user_id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Text:       "there is no user with user id " + c.Param("user_id"),
		})
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToPublic())
}

// UpdateAvatar godoc
// @Summary Set the authenticated user's avatar key
// @Tags Users
// @Accept json
// @Produce json
// @Param session-id header string true "Session id"
// @Param body body model.UpdateAvatarRequest true "Avatar key"
// @Success 200 {object} model.UserPublic
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /users/avatar [put]
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	var req model.UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user := middleware.UserFrom(c)
	updated, err := h.authService.UpdateAvatar(user.ID, req.AvatarKey)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated.ToPublic())
}
