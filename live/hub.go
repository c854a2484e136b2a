package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is the envelope pushed to connected spectators.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type TeamRegisteredPayload struct {
	TeamName string `json:"team_name"`
	LogoName string `json:"logo_name"`
}

// Hub fans registration events out to every connected spectator. There is a
// single broadcast domain; no per-room bookkeeping is needed.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte

	mu      sync.RWMutex
	clients map[*Client]bool
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.closeSend()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("live client connected", slog.Int("clients", h.ClientCount()))

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				client.closeSend()
				delete(h.clients, client)
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow client; drop the message rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastTeamRegistered pushes a team_registered event to all spectators.
// It satisfies services.RegistrationBroadcaster.
func (h *Hub) BroadcastTeamRegistered(teamName, logoName string) {
	h.BroadcastEvent(Event{
		Type: "team_registered",
		Payload: TeamRegisteredPayload{
			TeamName: teamName,
			LogoName: logoName,
		},
	})
}

func (h *Hub) BroadcastEvent(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal live event", slog.Any("error", err))
		return
	}
	select {
	case h.Broadcast <- message:
	default:
		h.logger.Warn("live broadcast channel full, dropping event",
			slog.String("type", event.Type))
	}
}
