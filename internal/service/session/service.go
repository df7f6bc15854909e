package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PM183/Bloom/internal/model/assistant"
	"github.com/PM183/Bloom/internal/model/chat"
	speechmodel "github.com/PM183/Bloom/internal/model/speech"
	"github.com/PM183/Bloom/internal/service/relay"
	"github.com/PM183/Bloom/internal/service/speech"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrBusy            = errors.New("a request is already in flight")
)

// ApologyReply is the in-conversation message shown when the relay cannot be
// reached. Failures never surface as dialogs or crashes.
const ApologyReply = "Sorry, there was a problem connecting to Bloom."

// Relay abstracts the relay client so tests can fake the model hop.
type Relay interface {
	Send(ctx context.Context, userMessage string, history []chat.Message) (relay.Reply, error)
}

// SynthesizerProvider hands out the playback device for a session. The
// WebSocket hub implements this; the chatprobe tool plugs in a discard one.
type SynthesizerProvider func(sessionID string) speech.Synthesizer

// Options tune per-session behavior.
type Options struct {
	Profile        assistant.Profile
	SpeechParams   speechmodel.Params
	NarrationDelay time.Duration
	VoiceEnabled   bool
}

// Service owns every live conversation: the append-only transcript, the
// single-flight loading gate and the narration controller for each session.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState

	relay    Relay
	synthFor SynthesizerProvider
	opts     Options
}

type sessionState struct {
	mu         sync.Mutex
	session    chat.Session
	messages   []chat.Message
	loading    bool
	controller *speech.Controller
}

// NewService bootstraps the in-memory session service.
func NewService(relayClient Relay, synthFor SynthesizerProvider, opts Options) *Service {
	if synthFor == nil {
		synthFor = func(string) speech.Synthesizer { return nil }
	}
	return &Service{
		sessions: make(map[string]*sessionState),
		relay:    relayClient,
		synthFor: synthFor,
		opts:     opts,
	}
}

// Snapshot is the render-ready view of one session.
type Snapshot struct {
	Session      chat.Session   `json:"session"`
	Messages     []chat.Message `json:"messages"`
	IsLoading    bool           `json:"isLoading"`
	VoiceEnabled bool           `json:"voiceEnabled"`
	IsSpeaking   bool           `json:"isSpeaking"`
}

// CreateSession provisions a conversation seeded with the synthetic greeting
// and narrates the greeting right away, subject to the voice toggle.
func (s *Service) CreateSession(_ context.Context) (Snapshot, error) {
	id := uuid.NewString()

	state := &sessionState{
		session: chat.Session{
			ID:        id,
			CreatedAt: time.Now().UTC(),
		},
		messages:   make([]chat.Message, 0, 16),
		controller: speech.NewController(s.synthFor(id), s.opts.SpeechParams, s.opts.VoiceEnabled),
	}

	greeting := chat.Message{
		ID:        uuid.NewString(),
		SessionID: id,
		Text:      s.opts.Profile.Greeting,
		Sender:    chat.SenderBot,
		Category:  chat.CategoryGreeting,
		CreatedAt: time.Now().UTC(),
	}
	state.messages = append(state.messages, greeting)

	s.mu.Lock()
	s.sessions[id] = state
	s.mu.Unlock()

	state.controller.Speak(greeting.Text)

	return s.snapshotLocked(state), nil
}

// Submit runs one conversation turn: append the user message, call the relay,
// append the bot reply and schedule its narration. Empty input and overlapping
// submissions are rejected without touching the transcript. A relay failure
// never escapes as an error; it becomes an apology message tagged error.
func (s *Service) Submit(ctx context.Context, sessionID, text string) (chat.Message, error) {
	state, err := s.lookup(sessionID)
	if err != nil {
		return chat.Message{}, err
	}

	trimmed := strings.TrimSpace(text)

	state.mu.Lock()
	if trimmed == "" {
		state.mu.Unlock()
		return chat.Message{}, ErrEmptyMessage
	}
	if state.loading {
		state.mu.Unlock()
		return chat.Message{}, ErrBusy
	}

	// A new user action always interrupts ongoing narration.
	state.controller.Stop()

	history := make([]chat.Message, len(state.messages))
	copy(history, state.messages)

	state.messages = append(state.messages, chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Text:      trimmed,
		Sender:    chat.SenderUser,
		CreatedAt: time.Now().UTC(),
	})
	state.loading = true
	state.mu.Unlock()

	reply, err := s.relay.Send(ctx, trimmed, history)
	if err != nil {
		log.Printf("[session] relay call failed for session=%s: %v", sessionID, err)
		reply = relay.Reply{Text: ApologyReply, Category: chat.CategoryError}
	}
	if reply.Category == "" {
		reply.Category = chat.CategoryGeneralWellness
	}

	botMessage := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Text:      reply.Text,
		Sender:    chat.SenderBot,
		Category:  reply.Category,
		CreatedAt: time.Now().UTC(),
	}

	state.mu.Lock()
	state.messages = append(state.messages, botMessage)
	state.loading = false
	controller := state.controller
	state.mu.Unlock()

	// Give the UI a beat to render the new message before narration starts.
	time.AfterFunc(s.opts.NarrationDelay, func() {
		controller.Speak(botMessage.Text)
	})

	return botMessage, nil
}

// Snapshot returns the current render state for a session.
func (s *Service) Snapshot(_ context.Context, sessionID string) (Snapshot, error) {
	state, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshotLocked(state), nil
}

// GetSession retrieves session metadata by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	state, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.session, nil
}

// SetVoiceEnabled flips the narration toggle. Disabling does not cut off an
// utterance already playing.
func (s *Service) SetVoiceEnabled(_ context.Context, sessionID string, enabled bool) error {
	state, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	state.controller.SetEnabled(enabled)
	return nil
}

// StopSpeaking cancels the active utterance, if any.
func (s *Service) StopSpeaking(_ context.Context, sessionID string) error {
	state, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	state.controller.Stop()
	return nil
}

func (s *Service) lookup(sessionID string) (*sessionState, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return state, nil
}

func (s *Service) snapshotLocked(state *sessionState) Snapshot {
	state.mu.Lock()
	defer state.mu.Unlock()

	messages := make([]chat.Message, len(state.messages))
	copy(messages, state.messages)

	return Snapshot{
		Session:      state.session,
		Messages:     messages,
		IsLoading:    state.loading,
		VoiceEnabled: state.controller.Enabled(),
		IsSpeaking:   state.controller.Speaking(),
	}
}
