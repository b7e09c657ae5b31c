package ws

import (
	"sync"

	"kindred/internal/platform/logger"
)

type envelope struct {
	sessionID string
	message   []byte
}

// Hub fans events out to the websocket clients of one session.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan envelope, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mutex.Lock()
			for sid, set := range h.clients {
				for c := range set {
					close(c.send)
				}
				delete(h.clients, sid)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.sessionID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.sessionID] = set
			}
			set[client] = true
			total := h.countLocked()
			h.mutex.Unlock()
			h.logger.Debug("[WS] connected", "session_id", client.sessionID, "total_clients", total)

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			if set, ok := h.clients[client.sessionID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.send)
				}
				if len(set) == 0 {
					delete(h.clients, client.sessionID)
				}
			}
			total := h.countLocked()
			h.mutex.Unlock()
			h.logger.Debug("[WS] disconnected", "session_id", client.sessionID, "total_clients", total)

		case env := <-h.broadcast:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[env.sessionID]))
			for c := range h.clients[env.sessionID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- env.message:
				default:
					h.Unregister(client)
				}
			}
			h.logger.Debug("[WS] broadcast", "session_id", env.sessionID, "clients", len(targets))
		}
	}
}

func (h *Hub) Stop() {
	if h == nil {
		return
	}
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	default:
		h.logger.Warn("[WS] unregister dropped", "reason", "buffer_full")
	}
}

// Broadcast queues message for every client of sessionID. It never blocks.
func (h *Hub) Broadcast(sessionID string, message []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- envelope{sessionID: sessionID, message: message}:
	default:
		h.logger.Warn("[WS] broadcast dropped", "reason", "buffer_full")
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.countLocked()
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
