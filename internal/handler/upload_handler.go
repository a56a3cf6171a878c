package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neartalkapp/neartalk/internal/middleware"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/pkg/storage"
)

// UploadHandler issues presigned object-store URLs for chat images and
// avatars.
type UploadHandler struct {
	store *storage.ObjectStore
}

func NewUploadHandler(store *storage.ObjectStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// PresignUpload godoc
// @Summary Get a presigned URL to upload a new image
// @Tags Uploads
// @Produce json
// @Param session-id header string true "Session id"
// @Success 200 {object} model.PresignedUploadResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /uploads [get]
func (h *UploadHandler) PresignUpload(c *gin.Context) {
	user := middleware.UserFrom(c)
	key := h.store.KeyForUser(user.Username)

	url, err := h.store.PresignedPut(c.Request.Context(), key)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, model.PresignedUploadResponse{URL: url, Key: key})
}

// GetImage godoc
// @Summary Redirect to a presigned download URL for an image key
// @Tags Uploads
// @Param session-id header string true "Session id"
// @Param key query string true "Object key"
// @Success 307
// @Failure 400 {object} model.ErrorResponse
// @Router /images [get]
func (h *UploadHandler) GetImage(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		badRequest(c, "key query parameter required")
		return
	}

	url, err := h.store.PresignedGet(c.Request.Context(), key)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}
