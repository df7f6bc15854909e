package speech

import (
	"errors"
	"testing"

	speechservice "github.com/PM183/Bloom/internal/service/speech"
)

func TestForSessionWithoutClient(t *testing.T) {
	hub := NewHub()
	synth := hub.ForSession("no-client")

	if voices := synth.Voices(); len(voices) != 0 {
		t.Fatalf("expected no voices without a client, got %d", len(voices))
	}

	err := synth.Speak(nil)
	if !errors.Is(err, speechservice.ErrNoSynthesizer) {
		t.Fatalf("expected ErrNoSynthesizer, got %v", err)
	}

	// Cancel without a client is a no-op, not a panic.
	synth.Cancel()
}
