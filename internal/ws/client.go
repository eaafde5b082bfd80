package ws

import (
	"time"

	"wager_service/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one WebSocket connection owned by a player.
type Client struct {
	PlayerID int64
	conn     *websocket.Conn
	hub      *Hub
	send     chan []byte
}

func NewClient(playerID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		PlayerID: playerID,
		conn:     conn,
		hub:      hub,
		send:     make(chan []byte, 64),
	}
}

// Run registers the client and services the connection until it closes.
func (c *Client) Run() {
	c.hub.register(c)
	go c.writePump()
	c.readPump()
}

// readPump discards inbound frames; the socket is push-only. It exists
// to service pongs and detect the close.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
		close(c.send)
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "player_id", c.PlayerID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
