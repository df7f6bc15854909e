package speech

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	speechmodel "github.com/PM183/Bloom/internal/model/speech"
	speechservice "github.com/PM183/Bloom/internal/service/speech"
)

// Hub tracks the narration channel of every connected browser tab. Each
// session has at most one attached client; a reconnect replaces the previous
// connection. Hub satisfies session.SynthesizerProvider via ForSession.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// ForSession returns the playback device handle for a session. The handle is
// valid before any browser connects; speaking through it just fails until a
// client attaches, which the controller absorbs silently.
func (h *Hub) ForSession(sessionID string) speechservice.Synthesizer {
	return &remoteSynthesizer{hub: h, sessionID: sessionID}
}

func (h *Hub) attach(sessionID string, conn *websocket.Conn) *client {
	c := newClient(conn)

	h.mu.Lock()
	prev := h.clients[sessionID]
	h.clients[sessionID] = c
	h.mu.Unlock()

	if prev != nil {
		prev.close(errors.New("superseded by a new connection"))
	}
	return c
}

func (h *Hub) detach(sessionID string, c *client) {
	h.mu.Lock()
	if h.clients[sessionID] == c {
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()

	c.close(errors.New("client disconnected"))
}

func (h *Hub) lookup(sessionID string) *client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[sessionID]
}

// remoteSynthesizer adapts the per-session WebSocket client to the
// speech.Synthesizer contract.
type remoteSynthesizer struct {
	hub       *Hub
	sessionID string
}

func (r *remoteSynthesizer) Voices() []speechmodel.Voice {
	c := r.hub.lookup(r.sessionID)
	if c == nil {
		return nil
	}
	return c.voiceList()
}

func (r *remoteSynthesizer) Speak(utt *speechmodel.Utterance) error {
	c := r.hub.lookup(r.sessionID)
	if c == nil {
		return speechservice.ErrNoSynthesizer
	}
	return c.speak(utt)
}

func (r *remoteSynthesizer) Cancel() {
	c := r.hub.lookup(r.sessionID)
	if c == nil {
		return
	}
	c.cancel()
}
