package speech

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	speechmodel "github.com/PM183/Bloom/internal/model/speech"
	sessionservice "github.com/PM183/Bloom/internal/service/session"
)

// WebSocketHandler upgrades narration channels and pumps client frames into
// the hub.
type WebSocketHandler struct {
	hub        *Hub
	sessionSvc *sessionservice.Service
	upgrader   websocket.Upgrader
}

// NewWebSocketHandler creates the WebSocket handler.
func NewWebSocketHandler(hub *Hub, sessionSvc *sessionservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		sessionSvc: sessionSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts the narration channel route.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// VoicesMessage is the client's voice inventory, sent on connect and whenever
// the platform voice list changes.
type VoicesMessage struct {
	Voices []speechmodel.Voice `json:"voices"`
}

// JobMessage reports the outcome of one utterance job.
type JobMessage struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.sessionSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}

	log.Printf("[websocket] narration channel opened for session: %s", sessionID)

	c := h.hub.attach(sessionID, conn)
	defer h.hub.detach(sessionID, c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, c)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		h.handleMessage(c, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(c *client, msg *inboundMessage) {
	switch msg.Type {
	case "voices":
		var payload VoicesMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Printf("[websocket] invalid voices payload: %v", err)
			return
		}
		c.setVoices(payload.Voices)
	case "end":
		var payload JobMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Printf("[websocket] invalid end payload: %v", err)
			return
		}
		c.finish(payload.ID, nil)
	case "error":
		var payload JobMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Printf("[websocket] invalid error payload: %v", err)
			return
		}
		c.finish(payload.ID, &playbackError{message: payload.Message})
	default:
		log.Printf("[websocket] unknown message type: %s", msg.Type)
	}
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// playbackError carries the client-reported failure reason.
type playbackError struct {
	message string
}

func (e *playbackError) Error() string {
	if e.message == "" {
		return "utterance playback failed"
	}
	return e.message
}
