package speech

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionservice "github.com/PM183/Bloom/internal/service/session"
	"github.com/PM183/Bloom/pkg/utils"
)

// Handler owns the speech routes: the narration WebSocket channel and a
// health probe.
type Handler struct {
	hub        *Hub
	sessionSvc *sessionservice.Service
	enabled    bool
}

// New creates the speech handler.
func New(hub *Hub, sessionSvc *sessionservice.Service, enabled bool) *Handler {
	return &Handler{
		hub:        hub,
		sessionSvc: sessionSvc,
		enabled:    enabled,
	}
}

// RegisterRoutes registers the speech routes. When narration is disabled the
// channel route answers 501 so clients can fall back to text-only mode.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Get("/health", h.handleHealth)

		if h.available() {
			wsHandler := NewWebSocketHandler(h.hub, h.sessionSvc)
			wsHandler.RegisterWebSocketRoutes(speechRouter)
		} else {
			speechRouter.Get("/ws/{sessionID}", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusNotImplemented, "speech narration not available")
			})
		}
	})
}

func (h *Handler) available() bool {
	return h.enabled && h.hub != nil && h.sessionSvc != nil
}

// handleHealth is the health probe.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "speech",
	})
}
