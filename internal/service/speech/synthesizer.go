package speech

import (
	"errors"

	speechmodel "github.com/PM183/Bloom/internal/model/speech"
)

// ErrNoSynthesizer is returned by Speak when no playback device is attached,
// e.g. the browser has not opened its narration channel yet.
var ErrNoSynthesizer = errors.New("no synthesizer attached")

// Synthesizer abstracts the platform speech-synthesis provider. The browser
// implementation lives behind a WebSocket; tests use in-process fakes.
type Synthesizer interface {
	// Voices enumerates the voices currently available for playback.
	Voices() []speechmodel.Voice
	// Speak begins playback of the utterance. The utterance's OnEnd/OnError
	// hooks fire asynchronously when playback finishes or fails.
	Speak(utt *speechmodel.Utterance) error
	// Cancel discards any queued or active utterances without firing hooks.
	Cancel()
}

// Discard is a synthesizer that swallows every utterance, reporting each one
// finished immediately. Used by the chatprobe tool, which has no audio path.
type Discard struct{}

func (Discard) Voices() []speechmodel.Voice { return nil }

func (Discard) Speak(utt *speechmodel.Utterance) error {
	if utt.OnEnd != nil {
		// Hooks must fire asynchronously, the caller may hold locks.
		go utt.OnEnd()
	}
	return nil
}

func (Discard) Cancel() {}
