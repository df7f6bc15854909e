package speech

// Voice describes one synthesizer voice as reported by the platform
// speech-synthesis provider.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"` // BCP 47 language tag, e.g. en-US
}

// Params are the fixed delivery parameters applied to every utterance.
type Params struct {
	Rate   float32 `json:"rate"`   // speaking rate multiplier
	Pitch  float32 `json:"pitch"`  // pitch multiplier
	Volume float32 `json:"volume"` // 0.0-1.0
}

// DefaultParams mirrors the product delivery settings: slightly slower than
// normal, slightly raised pitch, volume at 80%.
func DefaultParams() Params {
	return Params{Rate: 0.9, Pitch: 1.1, Volume: 0.8}
}
