// Package live pushes scoreboard updates to websocket subscribers.
// Each connection subscribes to a single game and receives the full
// scoreboard whenever it is rebroadcast.
package live

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crtorres/canasta/internal/models"
)

// Update is one scoreboard push.
type Update struct {
	Type       string           `json:"type"`
	Scoreboard models.Scoreboard `json:"scoreboard"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Hub maintains the set of active subscriber connections and fans
// scoreboard updates out to them.
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan models.Scoreboard
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.Scoreboard, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run drives the hub until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	log.Info().Msg("Live hub started")
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case scoreboard := <-h.broadcast:
			h.broadcastScoreboard(scoreboard)
		}
	}
}

func (h *Hub) Register(c *Client) {
	h.register <- c
}

func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast queues a scoreboard for fan-out. Non-blocking: if the
// buffer is full the update is dropped, the next broadcast carries the
// full state anyway.
func (h *Hub) Broadcast(scoreboard models.Scoreboard) {
	select {
	case h.broadcast <- scoreboard:
	default:
		log.Warn().Str("game_id", scoreboard.GameID).Msg("Broadcast buffer full, dropping update")
	}
}

// SubscribedGames returns the distinct game ids with at least one
// subscriber. The broadcast job uses this to avoid loading games
// nobody is watching.
func (h *Hub) SubscribedGames() []string {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	seen := make(map[string]struct{})
	games := make([]string, 0)
	for c := range h.clients {
		if _, ok := seen[c.gameID]; ok {
			continue
		}
		seen[c.gameID] = struct{}{}
		games = append(games, c.gameID)
	}
	return games
}

// ClientCount returns the number of active subscribers.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	log.Debug().
		Str("client_id", c.id).
		Str("game_id", c.gameID).
		Int("clients", len(h.clients)).
		Msg("Live subscriber connected")
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		log.Debug().
			Str("client_id", c.id).
			Int("clients", len(h.clients)).
			Msg("Live subscriber disconnected")
	}
}

func (h *Hub) broadcastScoreboard(scoreboard models.Scoreboard) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.gameID == scoreboard.GameID {
			clients = append(clients, c)
		}
	}
	h.clientsMu.RUnlock()

	update := Update{
		Type:       "scoreboard",
		Scoreboard: scoreboard,
		Timestamp:  time.Now(),
	}

	for _, c := range clients {
		if !c.trySend(update) {
			// Buffer full, the subscriber is too slow. Drop it.
			log.Warn().Str("client_id", c.id).Msg("Subscriber buffer full, disconnecting")
			go h.Unregister(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	log.Info().Int("clients", len(h.clients)).Msg("Shutting down live hub")
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
