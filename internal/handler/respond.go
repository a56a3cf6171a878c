package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/service"
)

// respondErr maps a service error to its stable status code. Internal
// failures get a generic message so storage-layer detail never reaches the
// client.
func respondErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	text := err.Error()

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrWrongCredentials):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	default:
		log.Printf("internal error: %v", err)
		text = "internal server error"
	}

	c.JSON(status, model.ErrorResponse{StatusCode: status, Text: text})
}

func badRequest(c *gin.Context, text string) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Text:       text,
	})
}
