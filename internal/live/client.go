// internal/live/client.go
package live

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The live feed is a public read-only stream.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket subscriber bound to a single game.
type Client struct {
	id     string
	gameID string
	conn   *websocket.Conn
	send   chan Update
	hub    *Hub
}

// ServeWS upgrades the request on GET /api/v1/games/{id}/live and
// registers the connection with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := strings.TrimSpace(r.PathValue("id"))
	if gameID == "" {
		http.Error(w, "game id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := &Client{
		id:     uuid.New().String(),
		gameID: gameID,
		conn:   conn,
		send:   make(chan Update, sendBufferSize),
		hub:    h,
	}
	h.Register(c)

	go c.writePump()
	go c.readPump()
}

func (c *Client) trySend(update Update) bool {
	select {
	case c.send <- update:
		return true
	default:
		return false
	}
}

// readPump discards inbound frames and watches for disconnect. The
// feed is one-way; reads exist only to process control messages.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Str("client_id", c.id).Err(err).Msg("Unexpected websocket close")
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
		case update, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(update); err != nil {
				log.Debug().Str("client_id", c.id).Err(err).Msg("Websocket write failed")
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
