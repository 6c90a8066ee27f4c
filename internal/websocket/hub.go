package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"mangrove/internal/models"

	"github.com/google/uuid"
)

// Event is the wire envelope pushed to subscribers of a post page.
type Event struct {
	Type    string      `json:"type"`
	PostID  uuid.UUID   `json:"postId"`
	Payload interface{} `json:"payload"`
}

// topicMessage routes a serialized event to every subscriber of one post.
type topicMessage struct {
	PostID  uuid.UUID
	Payload []byte
}

// Hub maintains the set of active clients, grouped by the post they are
// watching, and fans events out to them.
type Hub struct {
	// Registered clients. Maps post ID to a set of active client connections.
	Clients map[uuid.UUID]map[*Client]bool

	// Channel for events targeted at one post's subscribers.
	Publish chan *topicMessage

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Publish:    make(chan *topicMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[uuid.UUID]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket Hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.PostID]; !ok {
				h.Clients[client.PostID] = make(map[*Client]bool)
			}
			h.Clients[client.PostID][client] = true
			log.Printf("WebSocket client registered for post %s. Subscribers: %d", client.PostID, len(h.Clients[client.PostID]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if subscribers, ok := h.Clients[client.PostID]; ok {
				if _, clientOk := subscribers[client]; clientOk {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.Clients, client.PostID)
					}
					log.Printf("WebSocket client unregistered for post %s. Remaining: %d", client.PostID, len(subscribers))
				}
			}
			h.mu.Unlock()

		case message := <-h.Publish:
			h.mu.RLock()
			for client := range h.Clients[message.PostID] {
				select {
				case client.Send <- message.Payload:
				default:
					log.Printf("Send buffer full for a subscriber of post %s. Event dropped for this client.", message.PostID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) publish(postID uuid.UUID, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal websocket event for post %s: %v", postID, err)
		return
	}
	select {
	case h.Publish <- &topicMessage{PostID: postID, Payload: payload}:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing event for post %s. Hub might be busy or blocked.", postID)
	}
}

// CommentCreated pushes a freshly created comment to everyone watching
// the post. Implements the forum notifier.
func (h *Hub) CommentCreated(postID uuid.UUID, comment *models.Comment) {
	h.publish(postID, Event{Type: "comment", PostID: postID, Payload: comment})
}

// VoteChanged pushes updated vote tallies to everyone watching the post.
func (h *Hub) VoteChanged(postID uuid.UUID, result *models.VoteResult) {
	h.publish(postID, Event{Type: "vote", PostID: postID, Payload: result})
}
