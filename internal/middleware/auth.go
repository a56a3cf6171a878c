package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/service"
)

// Context keys set by AuthMiddleware.
const (
	ContextSession = "session"
	ContextUser    = "user"
)

// AuthMiddleware resolves the session-id header, renews the session's expiry
// and injects the session and its user into the request context.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("session-id")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				StatusCode: http.StatusUnauthorized,
				Text:       "session-id header required",
			})
			return
		}

		sessionID, err := uuid.Parse(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				StatusCode: http.StatusUnauthorized,
				Text:       "invalid session",
			})
			return
		}

		session, err := authService.Authenticate(sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				StatusCode: http.StatusUnauthorized,
				Text:       "invalid or expired session",
			})
			return
		}

		user, err := authService.GetUser(session.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				StatusCode: http.StatusUnauthorized,
				Text:       "invalid or expired session",
			})
			return
		}

		c.Set(ContextSession, session)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// SessionFrom returns the authenticated session injected by AuthMiddleware.
func SessionFrom(c *gin.Context) *model.Session {
	return c.MustGet(ContextSession).(*model.Session)
}

// UserFrom returns the authenticated user injected by AuthMiddleware.
func UserFrom(c *gin.Context) *model.User {
	return c.MustGet(ContextUser).(*model.User)
}
