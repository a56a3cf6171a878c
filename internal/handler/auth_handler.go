package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neartalkapp/neartalk/internal/middleware"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/service"
)

// AuthHandler handles login and logout
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary Log in with email or username
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body model.LoginRequest true "Login request"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Log out the current session
// @Tags Auth
// @Produce json
// @Param session-id header string true "Session id"
// @Success 200 {object} model.SuccessResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if err := h.authService.Logout(session.ID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "logged out"})
}
