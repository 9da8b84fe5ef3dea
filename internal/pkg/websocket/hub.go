package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/classroom/internal/app/models"
)

const broadcastBuffer = 256

// Hub keeps the connected clients of every course feed and fans events out to them
type Hub struct {
	// Registered clients organized by course ID
	clients map[int64]map[*Client]struct{}

	broadcast  chan models.CourseEvent
	register   chan *Client
	unregister chan *Client

	// closed when Run returns
	done chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
	now    func() time.Time
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		broadcast:  make(chan models.CourseEvent, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Publish queues an event for the course's connected members.
// It never blocks: when the queue is full the event is dropped.
func (h *Hub) Publish(event models.CourseEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = h.now()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().
			Str("type", string(event.Type)).
			Int64("courseID", event.CourseID).
			Msg("Course event queue full, event dropped")
	}
}

// attach hands a client to the hub; false when the hub has stopped
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.courseID]; !ok {
		h.clients[client.courseID] = make(map[*Client]struct{})
	}
	h.clients[client.courseID][client] = struct{}{}

	h.logger.Debug().
		Int64("courseID", client.courseID).
		Str("userID", client.userID.String()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.courseID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.courseID)
	}

	h.logger.Debug().
		Int64("courseID", client.courseID).
		Str("userID", client.userID.String()).
		Msg("Client unregistered")
}

func (h *Hub) broadcastEvent(event models.CourseEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Int64("courseID", event.CourseID).Msg("Failed to marshal course event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[event.CourseID] {
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// clientsCount returns the number of connected clients for a course
func (h *Hub) clientsCount(courseID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[courseID])
}

// connected reports whether userID has at least one open feed on courseID
func (h *Hub) connected(courseID int64, userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[courseID] {
		if client.userID == userID {
			return true
		}
	}
	return false
}
