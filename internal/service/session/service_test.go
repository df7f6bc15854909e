package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/PM183/Bloom/internal/model/assistant"
	"github.com/PM183/Bloom/internal/model/chat"
	speechmodel "github.com/PM183/Bloom/internal/model/speech"
	"github.com/PM183/Bloom/internal/service/relay"
	"github.com/PM183/Bloom/internal/service/speech"
)

type fakeRelay struct {
	mu    sync.Mutex
	calls int
	reply relay.Reply
	err   error

	// when set, Send blocks until release is closed
	started chan struct{}
	release chan struct{}
}

func (f *fakeRelay) Send(_ context.Context, userMessage string, history []chat.Message) (relay.Reply, error) {
	f.mu.Lock()
	f.calls++
	started := f.started
	release := f.release
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}

	if f.err != nil {
		return relay.Reply{}, f.err
	}
	if f.reply.Text != "" {
		return f.reply, nil
	}
	return relay.Reply{Text: "echo: " + userMessage, Category: chat.CategoryGeneralWellness}, nil
}

func (f *fakeRelay) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingSynth struct {
	mu     sync.Mutex
	spoken []string
	notify chan string
}

func newRecordingSynth() *recordingSynth {
	return &recordingSynth{notify: make(chan string, 16)}
}

func (r *recordingSynth) Voices() []speechmodel.Voice { return nil }

func (r *recordingSynth) Speak(utt *speechmodel.Utterance) error {
	r.mu.Lock()
	r.spoken = append(r.spoken, utt.Text)
	r.mu.Unlock()
	r.notify <- utt.Text
	return nil
}

func (r *recordingSynth) Cancel() {}

func (r *recordingSynth) spokenTexts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.spoken...)
}

func newTestService(relayClient Relay, synth speech.Synthesizer, voiceEnabled bool) *Service {
	return NewService(relayClient, func(string) speech.Synthesizer { return synth }, Options{
		Profile:        assistant.Seed(),
		SpeechParams:   speechmodel.DefaultParams(),
		NarrationDelay: time.Millisecond,
		VoiceEnabled:   voiceEnabled,
	})
}

func waitForSpeech(t *testing.T, synth *recordingSynth) string {
	t.Helper()
	select {
	case text := <-synth.notify:
		return text
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for narration")
		return ""
	}
}

func TestCreateSessionSeedsGreeting(t *testing.T) {
	synth := newRecordingSynth()
	svc := newTestService(&fakeRelay{}, synth, true)

	snapshot, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	if len(snapshot.Messages) != 1 {
		t.Fatalf("expected exactly the greeting, got %d messages", len(snapshot.Messages))
	}
	greeting := snapshot.Messages[0]
	if greeting.Sender != chat.SenderBot || greeting.Category != chat.CategoryGreeting {
		t.Fatalf("unexpected greeting message: %+v", greeting)
	}
	if snapshot.IsLoading {
		t.Fatal("new session must not be loading")
	}

	// The greeting is narrated immediately, not through the delay path.
	if spoken := waitForSpeech(t, synth); spoken != greeting.Text {
		t.Fatalf("expected greeting narration, got %q", spoken)
	}
}

func TestSubmitAppendsUserThenBot(t *testing.T) {
	synth := newRecordingSynth()
	svc := newTestService(&fakeRelay{}, synth, true)
	ctx := context.Background()

	snapshot, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	waitForSpeech(t, synth)
	sessionID := snapshot.Session.ID

	for i := 0; i < 3; i++ {
		text := fmt.Sprintf("message %d", i)
		if _, err := svc.Submit(ctx, sessionID, text); err != nil {
			t.Fatalf("Submit err: %v", err)
		}
		waitForSpeech(t, synth)
	}

	snapshot, err = svc.Snapshot(ctx, sessionID)
	if err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}

	// greeting + 3 user/bot pairs, strictly alternating
	if len(snapshot.Messages) != 7 {
		t.Fatalf("expected 7 messages, got %d", len(snapshot.Messages))
	}
	for i := 0; i < 3; i++ {
		user := snapshot.Messages[1+2*i]
		bot := snapshot.Messages[2+2*i]
		if user.Sender != chat.SenderUser {
			t.Fatalf("message %d: expected user turn, got %s", 1+2*i, user.Sender)
		}
		if bot.Sender != chat.SenderBot {
			t.Fatalf("message %d: expected bot turn, got %s", 2+2*i, bot.Sender)
		}
		if bot.Text != "echo: "+user.Text {
			t.Fatalf("bot reply %q does not match user turn %q", bot.Text, user.Text)
		}
	}
	if snapshot.IsLoading {
		t.Fatal("loading must be false after the turn completes")
	}
}

func TestSubmitRejectsEmptyInput(t *testing.T) {
	svc := newTestService(&fakeRelay{}, newRecordingSynth(), false)
	ctx := context.Background()

	snapshot, _ := svc.CreateSession(ctx)
	sessionID := snapshot.Session.ID

	if _, err := svc.Submit(ctx, sessionID, "   \n\t"); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}

	after, _ := svc.Snapshot(ctx, sessionID)
	if len(after.Messages) != 1 {
		t.Fatalf("whitespace submission must not change the transcript, got %d messages", len(after.Messages))
	}
}

func TestSubmitSingleFlight(t *testing.T) {
	blocking := &fakeRelay{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := newTestService(blocking, newRecordingSynth(), false)
	ctx := context.Background()

	snapshot, _ := svc.CreateSession(ctx)
	sessionID := snapshot.Session.ID

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.Submit(ctx, sessionID, "first"); err != nil {
			t.Errorf("first Submit err: %v", err)
		}
	}()

	<-blocking.started

	if _, err := svc.Submit(ctx, sessionID, "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while a request is in flight, got %v", err)
	}

	close(blocking.release)
	<-done

	if blocking.callCount() != 1 {
		t.Fatalf("expected exactly one relay invocation, got %d", blocking.callCount())
	}

	after, _ := svc.Snapshot(ctx, sessionID)
	// greeting + first user + first bot; nothing from the rejected submit
	if len(after.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(after.Messages))
	}
}

func TestSubmitContainsRelayFailure(t *testing.T) {
	svc := newTestService(&fakeRelay{err: errors.New("connection refused")}, newRecordingSynth(), false)
	ctx := context.Background()

	snapshot, _ := svc.CreateSession(ctx)
	sessionID := snapshot.Session.ID

	botMsg, err := svc.Submit(ctx, sessionID, "hello")
	if err != nil {
		t.Fatalf("a relay failure must not escape Submit, got: %v", err)
	}

	if botMsg.Category != chat.CategoryError {
		t.Fatalf("expected error category, got %s", botMsg.Category)
	}
	if botMsg.Text != ApologyReply {
		t.Fatalf("unexpected apology text: %q", botMsg.Text)
	}

	after, _ := svc.Snapshot(ctx, sessionID)
	if after.IsLoading {
		t.Fatal("loading must reset to false after a failed turn")
	}
	if len(after.Messages) != 3 {
		t.Fatalf("expected exactly one new bot message, got %d total", len(after.Messages))
	}
}

func TestVoiceDisabledNeverSpeaks(t *testing.T) {
	synth := newRecordingSynth()
	svc := newTestService(&fakeRelay{}, synth, false)
	ctx := context.Background()

	snapshot, _ := svc.CreateSession(ctx)
	sessionID := snapshot.Session.ID

	if _, err := svc.Submit(ctx, sessionID, "hello"); err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	after, _ := svc.Snapshot(ctx, sessionID)
	if after.IsSpeaking {
		t.Fatal("session must never be speaking with voice disabled")
	}

	time.Sleep(50 * time.Millisecond)
	if spoken := synth.spokenTexts(); len(spoken) != 0 {
		t.Fatalf("expected no narration, got %v", spoken)
	}
}

func TestSubmitPassesReplyTextThrough(t *testing.T) {
	relayClient := &fakeRelay{reply: relay.Reply{
		Text:     "Try a 5-minute walk.",
		Category: chat.CategoryGeneralWellness,
	}}
	svc := newTestService(relayClient, newRecordingSynth(), false)
	ctx := context.Background()

	snapshot, _ := svc.CreateSession(ctx)

	botMsg, err := svc.Submit(ctx, snapshot.Session.ID, "I feel sluggish")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	if botMsg.Text != "Try a 5-minute walk." {
		t.Fatalf("bot message must carry the reply verbatim, got %q", botMsg.Text)
	}
	if botMsg.Category != chat.CategoryGeneralWellness {
		t.Fatalf("unexpected category: %s", botMsg.Category)
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	svc := newTestService(&fakeRelay{}, newRecordingSynth(), false)

	if _, err := svc.Submit(context.Background(), "missing", "hello"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSetVoiceEnabledToggles(t *testing.T) {
	synth := newRecordingSynth()
	svc := newTestService(&fakeRelay{}, synth, false)
	ctx := context.Background()

	snapshot, _ := svc.CreateSession(ctx)
	sessionID := snapshot.Session.ID

	if err := svc.SetVoiceEnabled(ctx, sessionID, true); err != nil {
		t.Fatalf("SetVoiceEnabled err: %v", err)
	}

	if _, err := svc.Submit(ctx, sessionID, "hello"); err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	if spoken := waitForSpeech(t, synth); spoken != "echo: hello" {
		t.Fatalf("expected narrated reply, got %q", spoken)
	}
}
