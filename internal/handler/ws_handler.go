package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/neartalkapp/neartalk/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, validate origin
	},
}

// WSHandler upgrades HTTP connections to the live channel
type WSHandler struct {
	registry *ws.Registry
}

func NewWSHandler(registry *ws.Registry) *WSHandler {
	return &WSHandler{registry: registry}
}

// HandleWebSocket godoc
// @Summary Open the live channel
// @Description The connection stays unassociated until the client sends a connect event announcing its user id.
// @Tags Live
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.registry, conn)
	go client.WritePump()
	go client.ReadPump()
}
