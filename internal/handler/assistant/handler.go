package assistant

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PM183/Bloom/internal/model/assistant"
)

// Handler serves the assistant profile consumed by the frontend: greeting
// text and the quick-reply shortcuts.
type Handler struct {
	profile assistant.Profile
}

// New creates the assistant handler.
func New(profile assistant.Profile) *Handler {
	return &Handler{profile: profile}
}

// RegisterRoutes mounts the assistant route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/assistant", h.handleGetProfile)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(h.profile)
}
