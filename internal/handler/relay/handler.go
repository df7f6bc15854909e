package relay

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PM183/Bloom/internal/config"
	"github.com/PM183/Bloom/internal/model/chat"
	relayservice "github.com/PM183/Bloom/internal/service/relay"
)

// Handler is the single-endpoint relay that hides the Groq credential. It
// assembles the prompt, forwards it upstream with the fixed policy constants
// and hands the provider's raw JSON body back verbatim.
type Handler struct {
	cfg        config.RelayConfig
	httpClient *http.Client
}

// New creates the relay handler.
func New(cfg config.RelayConfig) *Handler {
	return &Handler{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// RegisterRoutes mounts the relay endpoint. Anything but POST gets a 405
// with a JSON error body, matching what browser clients expect.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/groq", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			h.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleRelay(w, req)
	})
}

type relayRequest struct {
	UserMessage string         `json:"userMessage"`
	Messages    []chat.Message `json:"messages"`
}

type upstreamRequest struct {
	Model       string                       `json:"model"`
	Messages    []relayservice.PromptMessage `json:"messages"`
	Temperature float64                      `json:"temperature"`
	MaxTokens   int                          `json:"max_tokens"`
	TopP        float64                      `json:"top_p"`
}

func (h *Handler) handleRelay(w http.ResponseWriter, r *http.Request) {
	var payload relayRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := relayservice.BuildPrompt(h.cfg.SystemPrompt, payload.Messages, payload.UserMessage)

	body, err := json.Marshal(upstreamRequest{
		Model:       h.cfg.Model,
		Messages:    prompt,
		Temperature: h.cfg.Temperature,
		MaxTokens:   h.cfg.MaxTokens,
		TopP:        h.cfg.TopP,
	})
	if err != nil {
		log.Printf("[relay] failed to encode upstream request: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Error connecting to Groq API")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, h.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("[relay] failed to build upstream request: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Error connecting to Groq API")
		return
	}
	req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		log.Printf("[relay] upstream call failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Error connecting to Groq API")
		return
	}
	defer resp.Body.Close()

	// The provider's JSON is passed through untouched; failure causes are
	// not echoed back beyond the generic error body.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[relay] failed to read upstream response: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Error connecting to Groq API")
		return
	}
	if !json.Valid(raw) {
		log.Printf("[relay] upstream returned non-JSON body (status %d)", resp.StatusCode)
		h.respondError(w, http.StatusInternalServerError, "Error connecting to Groq API")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		log.Printf("[relay] failed to write response: %v", err)
	}
}

// respondError sends an error response.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
