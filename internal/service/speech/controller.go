package speech

import (
	"log"
	"sync"

	"github.com/google/uuid"

	speechmodel "github.com/PM183/Bloom/internal/model/speech"
)

// Controller owns at most one active spoken-utterance job at a time and
// tracks the speaking flag for a single session. Starting a new job always
// supersedes the previous one; no two jobs play audio concurrently.
type Controller struct {
	mu         sync.Mutex
	synth      Synthesizer
	params     speechmodel.Params
	enabled    bool
	speaking   bool
	generation uint64
}

// NewController builds a controller over the given synthesizer. The enabled
// flag is the user's voice toggle; when false no utterance is ever started.
func NewController(synth Synthesizer, params speechmodel.Params, enabled bool) *Controller {
	return &Controller{
		synth:   synth,
		params:  params,
		enabled: enabled,
	}
}

// Speak cancels any active job and starts narrating text. A no-op when voice
// output is disabled. Completion and error hooks are attached before playback
// begins, so a failing job can never leave the speaking flag stuck true.
func (c *Controller) Speak(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || c.synth == nil {
		return
	}

	// Tear down the old job first. Bumping the generation detaches its
	// completion hooks: a stale callback from a superseded job must not
	// clear state belonging to the new one.
	c.synth.Cancel()
	c.generation++
	gen := c.generation

	voice := PreferredVoice(c.synth.Voices())
	utt := &speechmodel.Utterance{
		ID:     uuid.NewString(),
		Text:   text,
		Voice:  voice,
		Rate:   c.params.Rate,
		Pitch:  c.params.Pitch,
		Volume: c.params.Volume,
		OnEnd: func() {
			c.finish(gen)
		},
		OnError: func(err error) {
			log.Printf("[speech] playback error: %v", err)
			c.finish(gen)
		},
	}

	c.speaking = true
	if err := c.synth.Speak(utt); err != nil {
		// Silent degradation: narration simply does not happen.
		log.Printf("[speech] failed to start utterance: %v", err)
		c.speaking = false
	}
}

// Stop cancels the active job, if any, and clears the speaking flag.
// Idempotent: calling with no active job is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.synth != nil {
		c.synth.Cancel()
	}
	c.generation++
	c.speaking = false
}

// Speaking reports whether an utterance job is currently active.
func (c *Controller) Speaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// SetEnabled flips the user voice toggle. Disabling does not cancel an
// in-flight utterance; the flag is only consulted when a new one starts.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// Enabled reports the user voice toggle.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// finish clears the speaking flag when the job that reported completion is
// still the current one.
func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	c.speaking = false
}
