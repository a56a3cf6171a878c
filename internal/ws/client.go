package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/neartalkapp/neartalk/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Client is one WebSocket connection. It stays unassociated, receiving
// nothing, until the peer announces its user id with a connect event.
type Client struct {
	registry *Registry
	conn     *websocket.Conn
	send     chan []byte

	closeOnce sync.Once
}

func NewClient(registry *Registry, conn *websocket.Conn) *Client {
	return &Client{
		registry: registry,
		conn:     conn,
		send:     make(chan []byte, 256),
	}
}

// Close tears down the connection; safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// connectData is the payload of the client-sent connect event.
type connectData struct {
	ID string `json:"id"`
}

// ReadPump consumes inbound frames. The only meaningful inbound event is
// connect, which registers the connection under the announced user id.
// Runs in a per-client goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		var event model.Event
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("bad websocket message: %v", err)
			continue
		}
		if event.Event != model.EventConnect {
			continue
		}

		raw, err := json.Marshal(event.Data)
		if err != nil {
			continue
		}
		var data connectData
		if err := json.Unmarshal(raw, &data); err != nil {
			continue
		}
		userID, err := uuid.Parse(data.ID)
		if err != nil {
			log.Printf("connect event with bad user id %q", data.ID)
			continue
		}
		c.registry.Register(userID, c)
	}
}

// WritePump pumps queued events to the connection and keeps it alive with
// pings. Runs in a per-client goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush any queued events into the same frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
