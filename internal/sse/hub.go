package sse

import (
	"encoding/json"
	"sync"

	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/google/uuid"
)

const (
	EventClientCreated = "client_created"
	EventClientUpdated = "client_updated"
	EventClientDeleted = "client_deleted"
	EventTeamUpdated   = "team_updated"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ClientDeletedEvent struct {
	ClientID  uuid.UUID `json:"client_id"`
	DeletedBy uuid.UUID `json:"deleted_by"`
}

type TeamUpdatedEvent struct {
	MemberID uuid.UUID `json:"member_id"`
	Action   string    `json:"action"`
}

// Client is one connected event stream. Scope decides which client events it receives.
type Client struct {
	ID     string
	UserID uuid.UUID
	Scope  models.ClientScope
	Send   chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *message
	mu         sync.RWMutex
}

// message pairs an event with the client record it is about. A nil subject
// reaches every subscriber.
type message struct {
	event   Event
	subject *models.Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *message, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.event)
			for _, client := range h.clients {
				if msg.subject != nil && !client.Scope.Allows(msg.subject) {
					continue
				}
				select {
				case client.Send <- data:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) BroadcastClientCreated(c *models.Client) {
	h.broadcast <- &message{event: Event{Type: EventClientCreated, Data: c}, subject: c}
}

func (h *Hub) BroadcastClientUpdated(c *models.Client) {
	h.broadcast <- &message{event: Event{Type: EventClientUpdated, Data: c}, subject: c}
}

func (h *Hub) BroadcastClientDeleted(c *models.Client, deletedBy uuid.UUID) {
	h.broadcast <- &message{
		event:   Event{Type: EventClientDeleted, Data: ClientDeletedEvent{ClientID: c.ID, DeletedBy: deletedBy}},
		subject: c,
	}
}

func (h *Hub) BroadcastTeamUpdated(memberID uuid.UUID, action string) {
	h.broadcast <- &message{
		event: Event{Type: EventTeamUpdated, Data: TeamUpdatedEvent{MemberID: memberID, Action: action}},
	}
}
