package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/common"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/models"
	"golang.org/x/time/rate"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Message types
const (
	MessageStatus         = "status"
	MessageTextBodyLoaded = string(interfaces.EventTextBodyLoaded)
	MessageViewerState    = string(interfaces.EventViewerState)
	MessageViewerProgress = string(interfaces.EventViewerProgress)
	MessageCorpusLoaded   = string(interfaces.EventCorpusLoaded)
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// StatusUpdate is sent once to every client right after it connects
type StatusUpdate struct {
	Service          string                 `json:"service"`
	Records          int                    `json:"records"`
	Viewer           *models.ViewerSnapshot `json:"viewer,omitempty"`
	ServerInstanceID string                 `json:"serverInstanceId"` // Unique ID per server startup - clients clear state on change
}

type subscription struct {
	eventType interfaces.EventType
	id        interfaces.SubscriptionID
}

// WebSocketHandler pushes text body, corpus and viewer events to browser clients
type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	eventService     interfaces.EventService
	corpus           interfaces.CorpusProvider
	viewer           interfaces.ViewerService
	progressThrottle *rate.Limiter // nil = no throttling
	subscriptions    []subscription
	serverInstanceID string
}

// NewWebSocketHandler creates the handler and subscribes it to the event service.
// corpus and viewer are optional and only feed the initial status message.
func NewWebSocketHandler(eventService interfaces.EventService, corpus interfaces.CorpusProvider, viewer interfaces.ViewerService, logger arbor.ILogger, config *common.WebSocketConfig) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]*sync.Mutex),
		eventService:     eventService,
		corpus:           corpus,
		viewer:           viewer,
		serverInstanceID: uuid.New().String(),
	}

	if config != nil && config.ProgressThrottle > 0 {
		h.progressThrottle = rate.NewLimiter(rate.Every(config.ProgressThrottle), 1)
		logger.Debug().
			Dur("interval", config.ProgressThrottle).
			Msg("Throttler initialized for viewer_progress events")
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized with server instance ID")

	if eventService != nil {
		h.subscribeToEvents()
	}

	return h
}

func (h *WebSocketHandler) subscribeToEvents() {
	forward := func(eventType interfaces.EventType, handler interfaces.EventHandler) {
		id, err := h.eventService.Subscribe(eventType, handler)
		if err != nil {
			h.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to subscribe WebSocket handler")
			return
		}
		h.subscriptions = append(h.subscriptions, subscription{eventType: eventType, id: id})
	}

	forward(interfaces.EventTextBodyLoaded, func(ctx context.Context, event interfaces.Event) error {
		h.Broadcast(MessageTextBodyLoaded, event.Payload)
		return nil
	})

	forward(interfaces.EventCorpusLoaded, func(ctx context.Context, event interfaces.Event) error {
		h.Broadcast(MessageCorpusLoaded, event.Payload)
		return nil
	})

	// State changes are never throttled; they also carry the final progress value
	forward(interfaces.EventViewerState, func(ctx context.Context, event interfaces.Event) error {
		h.Broadcast(MessageViewerState, event.Payload)
		return nil
	})

	forward(interfaces.EventViewerProgress, func(ctx context.Context, event interfaces.Event) error {
		if h.progressThrottle != nil && !h.progressThrottle.Allow() {
			return nil
		}
		h.Broadcast(MessageViewerProgress, event.Payload)
		return nil
	})
}

// HandleWebSocket handles WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	mutex := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = mutex
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", clientCount).Msg("WebSocket client connected")

	h.sendStatus(conn, mutex)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Int("clients", remaining).Msg("WebSocket client disconnected")
	}()

	// Read messages from client (keep connection alive)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// Broadcast sends one message to every connected client
func (h *WebSocketHandler) Broadcast(messageType string, payload interface{}) {
	data, err := json.Marshal(WSMessage{Type: messageType, Payload: payload})
	if err != nil {
		h.logger.Error().Err(err).Str("type", messageType).Msg("Failed to marshal WebSocket message")
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn, mutex := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, mutex)
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		if err := write(conn, mutexes[i], data); err != nil {
			h.logger.Warn().Err(err).Str("type", messageType).Msg("Failed to send message to client")
		}
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unsubscribes from the event service and disconnects every client
func (h *WebSocketHandler) Close() {
	if h.eventService != nil {
		for _, sub := range h.subscriptions {
			h.eventService.Unsubscribe(sub.eventType, sub.id)
		}
		h.subscriptions = nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, mutex := range h.clients {
		mutex.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		mutex.Unlock()
		conn.Close()
		delete(h.clients, conn)
	}
}

// sendStatus sends current status to a specific client
func (h *WebSocketHandler) sendStatus(conn *websocket.Conn, mutex *sync.Mutex) {
	status := StatusUpdate{
		Service:          "ONLINE",
		ServerInstanceID: h.serverInstanceID,
	}
	if h.corpus != nil {
		status.Records = h.corpus.Corpus().Len()
	}
	if h.viewer != nil {
		snapshot := h.viewer.Snapshot()
		status.Viewer = &snapshot
	}

	data, err := json.Marshal(WSMessage{Type: MessageStatus, Payload: status})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal initial status")
		return
	}
	if err := write(conn, mutex, data); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send initial status")
	}
}

func write(conn *websocket.Conn, mutex *sync.Mutex, data []byte) error {
	mutex.Lock()
	defer mutex.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
