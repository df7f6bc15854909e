package speech

// Utterance is one unit of synthesized spoken output, from playback start to
// completion or cancellation. OnEnd and OnError must both be set before the
// utterance is handed to a synthesizer so a playback failure can never leave
// the owner's speaking state stuck.
type Utterance struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Voice  Voice   `json:"voice"`
	Rate   float32 `json:"rate"`
	Pitch  float32 `json:"pitch"`
	Volume float32 `json:"volume"`

	OnEnd   func()      `json:"-"`
	OnError func(error) `json:"-"`
}
