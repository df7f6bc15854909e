package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionservice "github.com/PM183/Bloom/internal/service/session"
)

// Handler exposes the conversation state machine over HTTP.
type Handler struct {
	sessionSvc *sessionservice.Service
}

// New creates the session handler.
func New(sessionSvc *sessionservice.Service) *Handler {
	return &Handler{sessionSvc: sessionSvc}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}", h.handleSnapshot)
	r.Post("/session/{sessionID}/messages", h.handleSubmit)
	r.Post("/session/{sessionID}/voice", h.handleVoiceToggle)
	r.Post("/session/{sessionID}/speech/stop", h.handleStopSpeaking)
}

// handleCreateSession seeds a new conversation and returns it with the
// greeting already appended.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.sessionSvc.CreateSession(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, snapshot)
}

// handleSnapshot returns the full render state of a session.
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snapshot, err := h.sessionSvc.Snapshot(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// handleSubmit runs one conversation turn and blocks until the bot reply is
// appended. Empty input and overlapping submissions are silently ignored;
// the caller gets the unchanged snapshot back.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := h.sessionSvc.Submit(r.Context(), sessionID, payload.Text)
	switch {
	case errors.Is(err, sessionservice.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, sessionservice.ErrEmptyMessage), errors.Is(err, sessionservice.ErrBusy):
		// Not an error: the submission is dropped and the state unchanged.
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	snapshot, err := h.sessionSvc.Snapshot(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// handleVoiceToggle flips narration on or off for the session.
func (h *Handler) handleVoiceToggle(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessionSvc.SetVoiceEnabled(r.Context(), sessionID, payload.Enabled); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"voiceEnabled": payload.Enabled})
}

// handleStopSpeaking cancels the active utterance, if any.
func (h *Handler) handleStopSpeaking(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessionSvc.StopSpeaking(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
