package speech

import (
	"strings"

	speechmodel "github.com/PM183/Bloom/internal/model/speech"
)

// preferredNameHints are matched against voice names, best-effort. The
// product voice is a female English speaker when the platform offers one.
var preferredNameHints = []string{"Female", "Samantha", "Karen", "Zira"}

// PreferredVoice picks the narration voice from the provider's inventory:
// a voice whose name signals a female English speaker, else the first voice
// with an English language tag, else the zero Voice (provider default).
func PreferredVoice(voices []speechmodel.Voice) speechmodel.Voice {
	for _, voice := range voices {
		for _, hint := range preferredNameHints {
			if strings.Contains(voice.Name, hint) {
				return voice
			}
		}
	}

	for _, voice := range voices {
		if strings.HasPrefix(strings.ToLower(voice.Lang), "en") {
			return voice
		}
	}

	return speechmodel.Voice{}
}
