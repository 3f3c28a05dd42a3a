package ws

import (
	"encoding/json"
	"log"

	"github.com/mwalczyk/chirp/internal/domain"
)

// Hub tracks connected clients by user id and delivers notification events
// to their recipient. Delivery is best-effort: disconnected recipients and
// full buffers drop the event.
type Hub struct {
	// clients maps userID → client.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	deliver    chan *delivery
}

type delivery struct {
	userID string
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan *delivery, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.userID] = client
			log.Printf("ws hub: user %s connected (%d total)", client.userID, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
				close(client.done)
				log.Printf("ws hub: user %s disconnected (%d total)", client.userID, len(h.clients))
			}

		case d := <-h.deliver:
			client, ok := h.clients[d.userID]
			if !ok {
				continue
			}
			select {
			case client.send <- d.data:
			default:
				// Client buffer full - disconnect
				delete(h.clients, d.userID)
				close(client.send)
				close(client.done)
			}
		}
	}
}

// PushNotification implements service.Pusher: it sends a notification.new
// event to the recipient if they are connected.
func (h *Hub) PushNotification(recipientID string, n *domain.Notification) {
	evt, err := NewEvent(EventTypeNotificationNew, NotificationPayload{Notification: *n})
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	select {
	case h.deliver <- &delivery{userID: recipientID, data: data}:
	default:
		log.Printf("ws hub: delivery queue full, dropping event for %s", recipientID)
	}
}
